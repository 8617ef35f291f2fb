// Package completion defines the contract for text-generation providers.
package completion

import (
	"context"
	"fmt"
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unavailable returns a Completer that fails every call with err, for when no
// provider could be configured.
func Unavailable(err error) Completer {
	return Func(func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("completion provider unavailable: %w", err)
	})
}
