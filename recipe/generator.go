// Package recipe generates recipes through a completion provider and extracts
// their ingredient lists.
package recipe

import (
	"context"
	"fmt"
	"log/slog"

	"pantrytracker/completion"
)

// ErrorPlaceholder is shown in place of a recipe when generation fails.
const ErrorPlaceholder = "Error generating AI response."

const promptTemplate = "Provide a recipe with quantities of ingredients for: %s"

// Prompt returns the completion prompt for a recipe query.
func Prompt(query string) string {
	return fmt.Sprintf(promptTemplate, query)
}

type Generator struct {
	completer completion.Completer
}

func NewGenerator(c completion.Completer) *Generator {
	return &Generator{completer: c}
}

// Generate never fails: a completion error is logged and ErrorPlaceholder returned.
func (g *Generator) Generate(ctx context.Context, query string) string {
	text, err := g.completer.Complete(ctx, Prompt(query))
	if err != nil {
		slog.Error("RECIPE: Error generating response", "query", query, "error", err)
		return ErrorPlaceholder
	}
	return text
}
