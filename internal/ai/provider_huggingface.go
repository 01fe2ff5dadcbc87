package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"

// DefaultHuggingFaceModels is the fallback model order for the hosted
// inference API.
var DefaultHuggingFaceModels = []string{
	"microsoft/DialoGPT-medium",
	"facebook/blenderbot-400M-distill",
	"microsoft/DialoGPT-small",
}

// HuggingFaceProvider implements Provider for the HuggingFace inference API.
// The models are generative rather than chat models, so the prompt is a
// transcript ending in a speaker marker and the answer is whatever the model
// writes after that marker.
type HuggingFaceProvider struct {
	name      string
	token     string
	anonymous bool
	baseURL   string
	models    []string
	marker    string
	minChars  int
	maxLength int
	doSample  bool
	client    *http.Client
}

// HuggingFaceOption configures a HuggingFaceProvider.
type HuggingFaceOption func(*HuggingFaceProvider)

// WithHuggingFaceBaseURL sets the base URL (for testing).
func WithHuggingFaceBaseURL(url string) HuggingFaceOption {
	return func(p *HuggingFaceProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHuggingFaceHTTPClient sets a custom HTTP client.
func WithHuggingFaceHTTPClient(client *http.Client) HuggingFaceOption {
	return func(p *HuggingFaceProvider) {
		p.client = client
	}
}

// WithHuggingFaceModels sets the ordered model list.
func WithHuggingFaceModels(models []string) HuggingFaceOption {
	return func(p *HuggingFaceProvider) {
		if len(models) > 0 {
			p.models = append([]string(nil), models...)
		}
	}
}

// NewHuggingFaceProvider creates the authenticated fallback provider.
func NewHuggingFaceProvider(token string, opts ...HuggingFaceOption) *HuggingFaceProvider {
	p := &HuggingFaceProvider{
		name:      "huggingface",
		token:     token,
		baseURL:   defaultHuggingFaceBaseURL,
		models:    append([]string(nil), DefaultHuggingFaceModels...),
		marker:    "Assistant:",
		minChars:  10,
		maxLength: 500,
		doSample:  true,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHuggingFaceFreeProvider creates the anonymous free-inference provider
// used in the secondary stage. It needs no token.
func NewHuggingFaceFreeProvider(opts ...HuggingFaceOption) *HuggingFaceProvider {
	p := &HuggingFaceProvider{
		name:      "huggingface-free",
		anonymous: true,
		baseURL:   defaultHuggingFaceBaseURL,
		models:    []string{"microsoft/DialoGPT-medium"},
		marker:    "Bot:",
		minChars:  5,
		maxLength: 200,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample,omitempty"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (p *HuggingFaceProvider) Name() string { return p.name }

func (p *HuggingFaceProvider) Configured() bool { return p.anonymous || p.token != "" }

func (p *HuggingFaceProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if !p.Configured() {
		return CompletionResponse{}, unconfigured(p.name)
	}

	system, user := splitPrompt(req.Messages)
	prompt := fmt.Sprintf("%s\n\nUser: %s\n%s", system, user, p.marker)

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	body := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxLength:   p.maxLength,
			Temperature: temperature,
			DoSample:    p.doSample,
		},
	}

	candidates := p.models
	if req.Model != "" {
		candidates = []string{req.Model}
	}

	answer, model, err := TryEach(ctx, candidates, func(ctx context.Context, model string) (string, error) {
		var out hfResponse
		if err := postJSON(ctx, p.client, p.name, p.baseURL+"/"+model, p.headers(), body, &out); err != nil {
			return "", err
		}
		if len(out) == 0 {
			return "", emptyErr(p.name, errors.New("no generations in response"))
		}
		return ExtractAfterMarker(out[0].GeneratedText, p.marker), nil
	}, TryEachOptions[string]{
		Accept: func(s string) bool { return utf8.RuneCountInString(s) > p.minChars },
	})
	if err != nil {
		return CompletionResponse{}, providerErr(p.name, kindOf(err), fmt.Errorf("all %s models failed: %w", p.name, err))
	}

	return CompletionResponse{Content: answer, Model: model}, nil
}

func (p *HuggingFaceProvider) headers() map[string]string {
	if p.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.token}
}

func (p *HuggingFaceProvider) Models() []ModelInfo {
	models := make([]ModelInfo, len(p.models))
	for i, m := range p.models {
		models[i] = ModelInfo{ID: m, Name: m, MaxTokens: p.maxLength, Description: "HuggingFace inference model"}
	}
	return models
}

func (p *HuggingFaceProvider) HealthCheck(ctx context.Context) error {
	if len(p.models) == 0 {
		return errNoCandidates
	}
	return getOK(ctx, p.client, p.baseURL+"/"+p.models[0], p.headers())
}

// ExtractAfterMarker returns the text between the first occurrence of marker
// and the next one, trimmed. It returns "" when the marker is absent.
func ExtractAfterMarker(text, marker string) string {
	_, after, found := strings.Cut(text, marker)
	if !found {
		return ""
	}
	if next := strings.Index(after, marker); next >= 0 {
		after = after[:next]
	}
	return strings.TrimSpace(after)
}
