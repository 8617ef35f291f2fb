package recipe

import (
	"errors"
	"strings"
)

// ErrNoIngredients is returned when no ingredient lines could be recognized.
var ErrNoIngredients = errors.New("no ingredients found in the recipe")

const bullet = "-"

// ParseIngredients extracts the bulleted block that follows a line mentioning
// "ingredients". The block ends at the first blank line or at end of input;
// anything after it is ignored, as are lines before the header.
func ParseIngredients(text string) ([]string, error) {
	ingredients := make([]string, 0)
	inSection := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		blank := strings.TrimSpace(line) == ""

		switch {
		case containsFold(line, "ingredients"):
			inSection = true
			continue
		case !inSection:
			continue
		case blank:
			return finish(ingredients)
		case strings.HasPrefix(line, bullet):
			// a bare bullet names nothing
			if item := strings.TrimSpace(strings.TrimPrefix(line, bullet)); item != "" {
				ingredients = append(ingredients, item)
			}
		}
	}

	return finish(ingredients)
}

func finish(ingredients []string) ([]string, error) {
	if len(ingredients) == 0 {
		return ingredients, ErrNoIngredients
	}
	return ingredients, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
