package recipe

import "strings"

// Line is one displayable line of generated recipe text.
type Line struct {
	Text   string `json:"text"`
	Header bool   `json:"header"`
}

// Render turns raw recipe text into display lines. Blank lines and sign-offs
// ("Enjoy your meal!") are dropped; ingredient and instruction headings are
// marked as headers. It has no effect on what ParseIngredients sees.
func Render(text string) []Line {
	lines := make([]Line, 0)
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" || containsFold(raw, "enjoy your") {
			continue
		}
		lines = append(lines, Line{
			Text:   raw,
			Header: containsFold(raw, "ingredients") || containsFold(raw, "instructions"),
		})
	}
	return lines
}
