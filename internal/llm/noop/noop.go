package noop

import (
	"context"

	"portfolio-intel/internal/logger"
)

// NoopCompleter is a fallback completer used when no LLM provider is configured
type NoopCompleter struct{}

// NewNoopCompleter returns a new instance that always answers with a hold note
func NewNoopCompleter() *NoopCompleter {
	return &NoopCompleter{}
}

// Complete implements the Completer interface. It always returns a neutral hold analysis
func (c *NoopCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger.Debug(ctx, "Noop completer called - always returns neutral hold", "prompt_chars", len(userPrompt))
	return "Sentiment: neutral. No live model is configured, so no analysis was performed. Recommendation: hold.", nil
}
