package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"governance-backend/internal/shared/storage/object"
)

func docxBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_Text(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
	}{
		{name: "txt extension", fileName: "guide.txt"},
		{name: "markdown extension", fileName: "Guide.MD"},
		{name: "content type only", fileName: "guide", contentType: "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTextFromBytes(context.Background(), []byte("Enable DLP."), tt.fileName, tt.contentType)
			if err != nil || got != "Enable DLP." {
				t.Fatalf("got %q, %v", got, err)
			}
		})
	}
}

func TestExtractTextFromBytes_Docx(t *testing.T) {
	data := docxBytes(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>First</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`,
	})
	got, err := ExtractTextFromBytes(context.Background(), data, "policy.docx", "")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if got != "First\nSecond" {
		t.Fatalf("unexpected docx text %q", got)
	}
}

func TestExtractTextFromBytes_Rejects(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("x"), "image.png", "image/png")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	if _, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), "broken.pdf", ""); err == nil {
		t.Fatal("expected error for malformed pdf")
	}

	zipOnly := docxBytes(t, map[string]string{"notes.txt": "hello"})
	if _, err := ExtractTextFromBytes(context.Background(), zipOnly, "notes.docx", ""); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

type memStore map[string]string

func (m memStore) List(ctx context.Context) ([]object.Info, error) { return nil, nil }

func (m memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	body, ok := m[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestExtractTextOpensStore(t *testing.T) {
	store := memStore{"a.md": "# Title"}
	got, err := ExtractText(context.Background(), store, "a.md", "")
	if err != nil || got != "# Title" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := ExtractText(context.Background(), store, "missing.md", ""); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestSupported(t *testing.T) {
	if !Supported("x.pdf", "") || !Supported("x", "text/markdown") || Supported("x.png", "") {
		t.Fatal("unexpected Supported result")
	}
}

// brokenPDF has a valid header and xref table but a trailer the lexer rejects.
func brokenPDF() []byte {
	head := "%PDF-1.4\n%" + strings.Repeat("x", 60) + "\n"
	body := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Root ) >>\n"
	return []byte(head + body + "startxref\n" + strconv.Itoa(len(head)) + "\n%%EOF\n")
}

func TestExtractTextFromBytes_MalformedPDF(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), brokenPDF(), "broken.pdf", "application/pdf")
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
	if !strings.HasPrefix(err.Error(), "pdf:") {
		t.Fatalf("unexpected error %v", err)
	}
}
