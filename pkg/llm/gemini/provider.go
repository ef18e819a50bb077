package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paper-brain-be/pkg/llm"
)

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: 0.7, // Default
		Model:       p.ModelName,
	}
	for _, opt := range opts {
		opt(options)
	}

	contents := make([]geminiContent, len(history))
	for i, msg := range history {
		role := msg.Role
		// Gemini uses "model" where OpenAI-style APIs use "assistant"
		if role == "assistant" || role == "system" {
			role = "model"
		}
		contents[i] = geminiContent{
			Parts: []geminiPart{{Text: msg.Content}},
			Role:  role,
		}
	}

	reqPayload := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		options.Model,
	)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, bodyBytes)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(bodyBytes, &geminiRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiRes.Candidates) == 0 || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates from gemini, body: %s", string(bodyBytes))
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// classifyAPIError maps a Gemini error response to a typed error.
// 429 / RESOURCE_EXHAUSTED becomes llm.QuotaError so the caller can start
// the provider cooldown instead of treating it as a transport failure.
func classifyAPIError(statusCode int, body []byte) error {
	var errRes geminiResponse
	message := string(body)
	if err := json.Unmarshal(body, &errRes); err == nil && errRes.Error != nil {
		message = errRes.Error.Message
		if statusCode == http.StatusTooManyRequests || errRes.Error.Status == "RESOURCE_EXHAUSTED" {
			return &llm.QuotaError{Message: message}
		}
	}
	if statusCode == http.StatusTooManyRequests || strings.Contains(message, "RESOURCE_EXHAUSTED") {
		return &llm.QuotaError{Message: message}
	}
	return fmt.Errorf("gemini error: status %d, body: %s", statusCode, message)
}
