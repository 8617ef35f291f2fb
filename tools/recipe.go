package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrytracker"
	"pantrytracker/recipe"
	"pantrytracker/slack"
)

type RecipeGenerate struct{ inv Inventory }

func NewRecipeGenerate(inv Inventory) *RecipeGenerate { return &RecipeGenerate{inv: inv} }

func (t *RecipeGenerate) Name() string  { return "recipe_generate" }
func (t *RecipeGenerate) Title() string { return "Generate Recipe" }
func (t *RecipeGenerate) Description() string {
	return "Generates a recipe with ingredient quantities for a dish or list of ingredients."
}

func (t *RecipeGenerate) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string", Description: "Ingredients or dish name"},
		},
		Required: []string{"query"},
	}
}

func (t *RecipeGenerate) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":  {Type: "string"},
			"recipe": {Type: "string"},
			"lines": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"text":   {Type: "string"},
						"header": {Type: "boolean"},
					},
				},
			},
		},
		Required: []string{"query", "recipe", "lines"},
	}
}

func (t *RecipeGenerate) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	query, err := stringArg(input, "query")
	if err != nil {
		return nil, err
	}
	st := t.inv.Generate(ctx, query)
	return toMap(struct {
		Query  string        `json:"query"`
		Recipe string        `json:"recipe"`
		Lines  []recipe.Line `json:"lines"`
	}{st.Query, st.Recipe, st.RecipeLines()})
}

// RecipeImport imports the current recipe's ingredients. When a Slack client is
// set, a summary is posted after a successful import.
type RecipeImport struct {
	inv     Inventory
	slack   pantrytracker.SlackClient
	channel string
}

func NewRecipeImport(inv Inventory, sc pantrytracker.SlackClient, channel string) *RecipeImport {
	return &RecipeImport{inv: inv, slack: sc, channel: channel}
}

func (t *RecipeImport) Name() string  { return "recipe_import" }
func (t *RecipeImport) Title() string { return "Import Recipe" }
func (t *RecipeImport) Description() string {
	return "Imports the ingredient list of the last generated recipe into the inventory as imported items. " +
		"When a query is given, a recipe is generated for it first."
}

func (t *RecipeImport) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string", Description: "Optional query to generate a recipe for before importing"},
		},
	}
}

func (t *RecipeImport) OutputSchema() *jsonschema.Schema {
	s := itemsSchema()
	s.Properties["imported"] = &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	s.Required = append(s.Required, "imported")
	return s
}

func (t *RecipeImport) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	if query, _ := input["query"].(string); strings.TrimSpace(query) != "" {
		t.inv.Generate(ctx, query)
	}

	imported, st, err := t.inv.ImportRecipe(ctx)
	if err != nil && len(imported) == 0 {
		return nil, err
	}
	if err != nil {
		slog.Warn("TOOLS: Recipe partially imported", "imported", len(imported), "error", err)
	}

	if t.slack != nil {
		if perr := t.slack.PostMessage(ctx, t.channel, slack.ImportSummary(st.Query, imported)); perr != nil {
			slog.Error("TOOLS: Failed to post import summary to Slack", "error", perr)
		}
	}

	return toMap(struct {
		stateOut
		Imported []string `json:"imported"`
	}{stateOutput(st, st.Items()), imported})
}
