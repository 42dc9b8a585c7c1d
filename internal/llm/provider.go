package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Classifier assigns a speech type to a speech the lookup table cannot resolve
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify picks one of the allowed speech types for a speech
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the speech to classify
type ClassifyRequest struct {
	// Text is the reconstructed speech text
	Text string

	// Source is the speech URL, given to the model as a hint
	Source string

	// Types is the STRICT list of labels the model may answer with
	Types []string
}

// ClassifyResponse contains the model's answer
type ClassifyResponse struct {
	// Type is one of ClassifyRequest.Types
	Type string

	// Raw is the unmodified model output
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for OpenAI compatible endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// MaxChars cuts the speech text sent to the model
	MaxChars int
}

// DefaultConfig returns the defaults used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "gpt-4o-mini",
		Timeout:   30,
		MaxTokens: 20,
		MaxChars:  4000,
	}
}

// BuildPrompt constructs the default classification prompt
func BuildPrompt(text, source string, types []string, maxChars int) string {
	return fmt.Sprintf(`Classify a speech from the Icelandic parliament (Alþingi) by its speech type.

RULES:
1. Answer with EXACTLY one label from this list and nothing else:
%s

2. If no label fits, answer with: none

Source: %s

Speech:
%s`, joinTypes(types), source, truncate(text, maxChars))
}

func joinTypes(types []string) string {
	if len(types) == 0 {
		return "(no labels available)"
	}
	var b strings.Builder
	for _, t := range types {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// truncate cuts text to at most max runes
func truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + " ..."
}

// matchLabel maps a model answer onto an allowed label. The comparison
// ignores case, surrounding quotes and trailing punctuation.
func matchLabel(answer string, types []string) (string, bool) {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`.,;:!"))
	for _, t := range types {
		if strings.ToLower(t) == cleaned {
			return t, true
		}
	}
	return "", false
}
