package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"governance-backend/internal/llm"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"

	defaultAzureAPIVersion = "2024-06-01"
	defaultTimeout         = 60 * time.Second

	systemPrompt = "You are a Microsoft 365 governance advisor. Respond with JSON only. No markdown."
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Config holds provider credentials for a PromptClient.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	Endpoint   string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// PromptClient implements llm.Client against OpenAI or Azure OpenAI chat completions.
type PromptClient struct {
	provider   string
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewPromptClient validates cfg and constructs a client. Missing credentials
// are reported as errors so callers can fall back to the template path.
func NewPromptClient(cfg Config) (*PromptClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &PromptClient{
		provider:   strings.ToLower(strings.TrimSpace(cfg.Provider)),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{Timeout: timeout},
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s api key is required", c.provider)
	}

	switch c.provider {
	case ProviderOpenAI:
		if c.model == "" {
			return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
		}
		c.endpoint = apiURL
	case ProviderAzure:
		endpoint, err := azureEndpoint(cfg)
		if err != nil {
			return nil, err
		}
		c.endpoint = endpoint
		if c.model == "" {
			c.model = strings.TrimSpace(cfg.Deployment)
		}
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	return c, nil
}

func azureEndpoint(cfg Config) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	deployment := strings.TrimSpace(cfg.Deployment)
	if base == "" || deployment == "" {
		return "", errors.New("azure openai endpoint and deployment are required")
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAzureAPIVersion
	}
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		base, url.PathEscape(deployment), url.QueryEscape(version)), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model,omitempty"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete returns the raw model response for the prompt.
func (c *PromptClient) Complete(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.3)
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if c.provider == ProviderOpenAI {
		reqBody.Model = c.model
	}
	if !isGPT5(c.model) {
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.provider == ProviderAzure {
		req.Header.Set("api-key", c.apiKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("%s request timeout: %w", c.provider, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("%s http status %d: %s", c.provider, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return "", fmt.Errorf("%s response parse: %w", c.provider, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s http status %d: %s (%s)", c.provider, resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s http status %d: %s", c.provider, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s response missing choices", c.provider)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s response empty content", c.provider)
	}
	logUsage(c.provider, c.model, parsed)
	return content, nil
}

func logUsage(provider, model string, resp chatResponse) {
	if resp.Usage == nil {
		log.Printf("llm response provider=%s model=%s", provider, model)
		return
	}
	log.Printf("llm response provider=%s model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		provider, model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*PromptClient)(nil)
