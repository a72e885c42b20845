package llmobs

import (
	"context"

	"portfolio-intel/internal/interfaces"
	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
	}
}

// Complete requests a completion with observability
func (oc *observableCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting completion",
		"prompt_chars", len(userPrompt),
	)

	text, err := oc.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		// Use ErrorWithErrSkip(1) to report the actual caller
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get completion", err,
			"prompt_chars", len(userPrompt),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Completion received",
		"response_chars", len(text),
	)

	return text, nil
}
