package domain

import "context"

// Prompt is a two-part chat prompt: fixed instructions plus the grounded user turn.
type Prompt struct {
	System string
	User   string
}

// String renders the prompt as a single deterministic text block.
func (p Prompt) String() string {
	return "[system]\n" + p.System + "\n\n[user]\n" + p.User
}

// CompletionResult is the free text produced by the completion provider.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer turns a prompt into free text.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (CompletionResult, error)
}
