package interfaces

import "context"

// Completer sends a system+user prompt pair to a language model and returns
// its free-text completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
