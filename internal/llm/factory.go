package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/rs/zerolog/log"
)

// NewClassifier creates a classifier based on configuration
func NewClassifier(config Config) (Classifier, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClassifier(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
		MaxChars:  modelConfig.MaxChars,
	}
}

// SpeechTypeFallback adapts a Classifier to the speech assembler.
// Failures and answers outside Types resolve to model.NoSpeechType.
type SpeechTypeFallback struct {
	Classifier Classifier
	Types      []string
}

// ClassifySpeechType implements speech.TypeClassifier
func (f *SpeechTypeFallback) ClassifySpeechType(ctx context.Context, text, source string) string {
	resp, err := f.Classifier.Classify(ctx, ClassifyRequest{
		Text:   text,
		Source: source,
		Types:  f.Types,
	})
	if err != nil {
		log.Warn().Err(err).Str("source", source).Msg("speech type classification failed")
		return model.NoSpeechType
	}
	if resp.Type == "" {
		return model.NoSpeechType
	}
	return resp.Type
}
