// Package reference assembles framework documents into prompt context.
package reference

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"governance-backend/internal/extract"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/storage/object"
	"governance-backend/internal/shared/telemetry"
	"governance-backend/internal/shared/util"
)

const (
	// MaxChars caps the assembled context, counted in runes.
	MaxChars        = 8000
	truncatedMarker = "\n\n[... content truncated ...]"
)

// Document is one extracted source.
type Document struct {
	Name string
	Text string
}

// Loader reads every supported document from Store once and caches the result.
type Loader struct {
	Store object.ObjectStore

	mu     sync.Mutex
	loaded bool
	text   string
}

// NewLoader returns a loader over store. A nil store yields no context.
func NewLoader(store object.ObjectStore) *Loader {
	return &Loader{Store: store}
}

// Load returns the cached context, loading it on first use. ok is false when
// there is no usable context. Failures are logged, never returned.
func (l *Loader) Load(ctx context.Context) (string, bool) {
	if l == nil {
		return "", false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		l.reload(ctx)
	}
	return l.text, l.text != ""
}

// Refresh discards the cache and reloads.
func (l *Loader) Refresh(ctx context.Context) (string, bool) {
	if l == nil {
		return "", false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload(ctx)
	return l.text, l.text != ""
}

func (l *Loader) reload(ctx context.Context) {
	l.text = ""
	if l.Store == nil {
		l.loaded = true
		return
	}
	metrics.IncReferenceLoad()

	infos, err := l.Store.List(ctx)
	if err != nil {
		// not cached, so the next request retries
		telemetry.Warn("reference.list_failed", map[string]any{"err": err.Error()})
		return
	}

	docs := make([]Document, 0, len(infos))
	for _, info := range infos {
		if !extract.Supported(info.Key, info.ContentType) {
			continue
		}
		text, err := extractOne(ctx, l.Store, info)
		if err != nil {
			telemetry.Warn("reference.extract_failed", map[string]any{"key": info.Key, "err": err.Error()})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Name: info.Key, Text: text})
	}

	l.text = Truncate(Assemble(docs), MaxChars)
	l.loaded = true
	telemetry.Info("reference.loaded", map[string]any{
		"documents":   len(docs),
		"chars":       utf8.RuneCountInString(l.text),
		"fingerprint": util.Fingerprint(l.text),
	})
}

// extractOne isolates a single document so one bad file cannot abort the load.
func extractOne(ctx context.Context, store object.ObjectStore, info object.Info) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract %s: %v", info.Key, r)
		}
	}()
	return extract.ExtractText(ctx, store, info.Key, info.ContentType)
}

// Assemble joins documents as "--- name ---" blocks separated by blank lines.
func Assemble(docs []Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, "--- "+doc.Name+" ---\n"+strings.TrimSpace(doc.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// Truncate cuts s to max runes and appends the truncation marker. Text within
// the limit is returned unchanged.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + truncatedMarker
}
