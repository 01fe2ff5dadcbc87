package ai

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "meta-llama/llama-3.2-3b-instruct:free"
)

// OpenRouterProvider implements Provider for OpenRouter.
// OpenRouter uses an OpenAI-compatible API with extra HTTP headers.
type OpenRouterProvider struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	model   string
	client  *http.Client
}

// OpenRouterOption configures an OpenRouterProvider.
type OpenRouterOption func(*OpenRouterProvider)

// WithOpenRouterBaseURL sets the base URL (for testing).
func WithOpenRouterBaseURL(url string) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithOpenRouterHTTPClient sets a custom HTTP client.
func WithOpenRouterHTTPClient(client *http.Client) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.client = client
	}
}

// WithOpenRouterReferer sets the HTTP-Referer attribution header.
func WithOpenRouterReferer(referer string) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		if referer != "" {
			p.referer = referer
		}
	}
}

// WithOpenRouterModel overrides the default free-tier model.
func WithOpenRouterModel(model string) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(apiKey string, opts ...OpenRouterOption) *OpenRouterProvider {
	p := &OpenRouterProvider{
		apiKey:  apiKey,
		baseURL: defaultOpenRouterBaseURL,
		referer: "http://localhost:3000",
		title:   "EduAssist-AI",
		model:   defaultOpenRouterModel,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) Configured() bool { return p.apiKey != "" }

func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if !p.Configured() {
		return CompletionResponse{}, unconfigured(p.Name())
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	var oaiResp openaiResponse
	err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/chat/completions", p.headers(),
		newOpenAIRequest(model, req), &oaiResp)
	if err != nil {
		return CompletionResponse{}, err
	}
	return oaiResp.toCompletion(p.Name(), model)
}

func (p *OpenRouterProvider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"HTTP-Referer":  p.referer,
		"X-Title":       p.title,
	}
}

func (p *OpenRouterProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: p.model, Name: "Llama 3.2 3B Instruct (free)", MaxTokens: 131072, Description: "Free-tier model via OpenRouter"},
	}
}

func (p *OpenRouterProvider) HealthCheck(ctx context.Context) error {
	return getOK(ctx, p.client, p.baseURL+"/models", map[string]string{"Authorization": "Bearer " + p.apiKey})
}
