package factory

import (
	"fmt"

	"paper-brain-be/pkg/llm"
	"paper-brain-be/pkg/llm/gemini"
	"paper-brain-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, geminiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
