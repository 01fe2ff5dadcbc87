package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultGroqBaseURL      = "https://api.groq.com/openai/v1"
	defaultTogetherBaseURL  = "https://api.together.xyz/v1"
	defaultDeepInfraBaseURL = "https://api.deepinfra.com/v1/openai"

	defaultGroqModel      = "llama3-8b-8192"
	defaultTogetherModel  = "meta-llama/Llama-3.2-3B-Instruct-Turbo"
	defaultDeepInfraModel = "meta-llama/Meta-Llama-3.1-8B-Instruct"
)

// OpenAIProvider implements Provider for OpenAI-compatible chat completion
// APIs (Groq, Together AI, DeepInfra, etc.) via a configurable base URL.
type OpenAIProvider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	name         string
	defaultModel string
	models       []ModelInfo
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL sets the base URL for the OpenAI-compatible API.
func WithBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.client = client
	}
}

// WithModels sets the available models for this provider.
func WithModels(models []ModelInfo) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.models = models
	}
}

// WithProviderName sets the provider name (for multi-instance use, e.g. "together").
func WithProviderName(name string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.name = name
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.defaultModel = model
		}
	}
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey:       apiKey,
		baseURL:      defaultOpenAIBaseURL,
		client:       &http.Client{Timeout: 30 * time.Second},
		name:         "openai",
		defaultModel: "gpt-4o-mini",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewGroqProvider creates the primary hosted provider. It makes exactly one
// call per request and does not retry.
func NewGroqProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	opts = append([]OpenAIOption{
		WithBaseURL(defaultGroqBaseURL),
		WithProviderName("groq"),
		WithDefaultModel(defaultGroqModel),
	}, opts...)
	return NewOpenAIProvider(apiKey, opts...)
}

// NewTogetherProvider creates a provider for the Together AI free tier.
func NewTogetherProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	opts = append([]OpenAIOption{
		WithBaseURL(defaultTogetherBaseURL),
		WithProviderName("together"),
		WithDefaultModel(defaultTogetherModel),
	}, opts...)
	return NewOpenAIProvider(apiKey, opts...)
}

// NewDeepInfraProvider creates a provider for the DeepInfra free tier.
func NewDeepInfraProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	opts = append([]OpenAIOption{
		WithBaseURL(defaultDeepInfraBaseURL),
		WithProviderName("deepinfra"),
		WithDefaultModel(defaultDeepInfraModel),
	}, opts...)
	return NewOpenAIProvider(apiKey, opts...)
}

// openaiRequest is the request body for the OpenAI chat completions API.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse is the response from the OpenAI chat completions API.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func newOpenAIRequest(model string, req CompletionRequest) openaiRequest {
	messages := make([]openaiMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openaiMessage(m)
	}

	oaiReq := openaiRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		oaiReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		oaiReq.Temperature = &temp
	}
	return oaiReq
}

// toCompletion converts a decoded chat completion into a response, failing
// with ErrEmptyResponse when there is nothing usable in it.
func (r openaiResponse) toCompletion(provider, model string) (CompletionResponse, error) {
	if len(r.Choices) == 0 {
		return CompletionResponse{}, emptyErr(provider, errors.New("no choices in response"))
	}
	content := r.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return CompletionResponse{}, emptyErr(provider, errors.New("blank content"))
	}
	if r.Model != "" {
		model = r.Model
	}
	return CompletionResponse{
		Content:      content,
		Model:        model,
		InputTokens:  r.Usage.PromptTokens,
		OutputTokens: r.Usage.CompletionTokens,
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Configured() bool { return p.apiKey != "" }

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if !p.Configured() {
		return CompletionResponse{}, unconfigured(p.name)
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	var oaiResp openaiResponse
	err := postJSON(ctx, p.client, p.name, p.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		newOpenAIRequest(model, req), &oaiResp)
	if err != nil {
		return CompletionResponse{}, err
	}
	return oaiResp.toCompletion(p.name, model)
}

func (p *OpenAIProvider) Models() []ModelInfo {
	if p.models != nil {
		return p.models
	}
	return []ModelInfo{
		{ID: p.defaultModel, Name: p.defaultModel, MaxTokens: 8192, Description: "Default " + p.name + " model"},
	}
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	return getOK(ctx, p.client, p.baseURL+"/models", map[string]string{"Authorization": "Bearer " + p.apiKey})
}
