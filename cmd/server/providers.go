package main

import (
	"time"

	"github.com/p-n-ai/eduassist/internal/ai"
	"github.com/p-n-ai/eduassist/internal/platform/config"
)

const (
	secondaryTimeout  = 15 * time.Second
	freeHFTimeout     = 10 * time.Second
	secondaryMinChars = 5
)

// providerSet is the chat failover chain in order plus the providers asked
// for quiz JSON.
type providerSet struct {
	chat []ai.Provider
	quiz []ai.Provider
}

// buildProviders assembles the chat chain: the primary hosted API, the
// local runtime, the secondary free tiers, then the authenticated
// HuggingFace fallback. Unconfigured providers stay in the chain and are
// skipped by the router.
func buildProviders(cfg config.AIConfig) providerSet {
	groq := ai.NewGroqProvider(cfg.Groq.APIKey)
	ollama := ai.NewOllamaProvider(cfg.Ollama.URL,
		ai.WithOllamaEnabled(cfg.Ollama.Enabled),
		ai.WithOllamaModels(cfg.Ollama.Models),
	)
	huggingface := ai.NewHuggingFaceProvider(cfg.HuggingFace.APIKey,
		ai.WithHuggingFaceModels(cfg.HuggingFace.Models),
	)

	chat := []ai.Provider{
		groq,
		ollama,
		ai.Guard(ai.NewOpenRouterProvider(cfg.OpenRouter.APIKey,
			ai.WithOpenRouterReferer(cfg.OpenRouter.Referer),
			ai.WithOpenRouterModel(cfg.OpenRouter.Model),
		), secondaryTimeout, secondaryMinChars),
		ai.Guard(ai.NewGoogleProvider(cfg.Google.APIKey,
			ai.WithGoogleModel(cfg.Google.Model),
		), secondaryTimeout, secondaryMinChars),
		ai.Guard(ai.NewTogetherProvider(cfg.Together.APIKey), secondaryTimeout, secondaryMinChars),
		ai.Guard(ai.NewDeepInfraProvider(cfg.DeepInfra.APIKey), secondaryTimeout, secondaryMinChars),
		ai.Guard(ai.NewHuggingFaceFreeProvider(), freeHFTimeout, secondaryMinChars),
		huggingface,
	}

	byName := map[string]ai.Provider{
		groq.Name():        groq,
		huggingface.Name(): huggingface,
		ollama.Name():      ollama,
	}
	var quiz []ai.Provider
	for _, name := range cfg.QuizProviders {
		if p, ok := byName[name]; ok {
			quiz = append(quiz, p)
		}
	}

	return providerSet{chat: chat, quiz: quiz}
}
