package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaModels is the local model preference order.
var DefaultOllamaModels = []string{"llama3.2:3b", "llama3.2:1b", "phi3:mini", "gemma2:2b"}

// OllamaProvider implements Provider for self-hosted Ollama.
// Ollama exposes an OpenAI-compatible API at /v1/chat/completions.
type OllamaProvider struct {
	baseURL string
	enabled bool
	client  *http.Client
	models  []string
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithOllamaHTTPClient sets a custom HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		p.client = client
	}
}

// WithOllamaModels sets the ordered list of local models to try.
func WithOllamaModels(models []string) OllamaOption {
	return func(p *OllamaProvider) {
		if len(models) > 0 {
			p.models = append([]string(nil), models...)
		}
	}
}

// WithOllamaEnabled toggles the provider. Disabled providers are skipped.
func WithOllamaEnabled(enabled bool) OllamaOption {
	return func(p *OllamaProvider) {
		p.enabled = enabled
	}
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		enabled: true,
		client:  &http.Client{Timeout: 60 * time.Second},
		models:  append([]string(nil), DefaultOllamaModels...),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Configured() bool { return p.enabled && p.baseURL != "" }

// Complete walks the model list until one model answers. If the runtime
// cannot be reached at all the remaining models are not tried.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if !p.Configured() {
		return CompletionResponse{}, unconfigured(p.Name())
	}

	candidates := p.models
	if req.Model != "" {
		candidates = []string{req.Model}
	}

	resp, model, err := TryEach(ctx, candidates, func(ctx context.Context, model string) (CompletionResponse, error) {
		return p.completeModel(ctx, model, req)
	}, TryEachOptions[CompletionResponse]{
		Accept: func(r CompletionResponse) bool { return strings.TrimSpace(r.Content) != "" },
		Fatal:  isUnreachable,
	})
	if err != nil {
		if isUnreachable(err) {
			return CompletionResponse{}, transportErr(p.Name(), err)
		}
		return CompletionResponse{}, providerErr(p.Name(), kindOf(err), fmt.Errorf("no ollama models available: %w", err))
	}
	return resp.withModel(model), nil
}

func (p *OllamaProvider) completeModel(ctx context.Context, model string, req CompletionRequest) (CompletionResponse, error) {
	var oaiResp openaiResponse
	if err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/v1/chat/completions", nil,
		newOpenAIRequest(model, req), &oaiResp); err != nil {
		return CompletionResponse{}, err
	}
	return oaiResp.toCompletion(p.Name(), model)
}

func (p *OllamaProvider) Models() []ModelInfo {
	models := make([]ModelInfo, len(p.models))
	for i, m := range p.models {
		models[i] = ModelInfo{ID: m, Name: m, MaxTokens: 8192, Description: "Free self-hosted model via Ollama"}
	}
	return models
}

func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	return getOK(ctx, p.client, p.baseURL+"/api/tags", nil)
}

// isUnreachable reports a failure to connect at all, as opposed to a slow
// or failing model.
func isUnreachable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// kindOf picks the most specific failure kind found in err.
func kindOf(err error) error {
	for _, kind := range []error{ErrTransport, ErrUpstream, ErrEmptyResponse, ErrUnconfigured} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUpstream
}

func (r CompletionResponse) withModel(model string) CompletionResponse {
	if r.Model == "" {
		r.Model = model
	}
	return r
}
