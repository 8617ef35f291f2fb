package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrytracker/inventory"
	"pantrytracker/storage"
)

// Tool is one named command over the inventory, described by JSON schemas so
// that callers (CLI, Lambda events) can dispatch to it by name.
type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

// Call is one named tool invocation, the event shape of the Lambda handler.
type Call struct {
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// Inventory is the part of inventory.Controller the tools drive.
type Inventory interface {
	State() inventory.State
	Refresh(ctx context.Context) (inventory.State, error)
	Add(ctx context.Context, name string) (inventory.State, error)
	Remove(ctx context.Context, name string) (inventory.State, error)
	Increment(ctx context.Context, name string) (inventory.State, error)
	RemoveAll(ctx context.Context) (inventory.State, error)
	AddImported(ctx context.Context, ingredient string) (inventory.State, error)
	Generate(ctx context.Context, query string) inventory.State
	ImportRecipe(ctx context.Context) ([]string, inventory.State, error)
}

func stringArg(input map[string]any, key string) (string, error) {
	v, ok := input[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing required string input %q", key)
	}
	return v, nil
}

func nameSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string", Description: description},
		},
		Required: []string{"name"},
	}
}

func itemsSchema() *jsonschema.Schema {
	minQty := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"items": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":       {Type: "string"},
						"quantity":   {Type: "integer", Minimum: &minQty},
						"isImported": {Type: "boolean"},
					},
					Required: []string{"name", "quantity", "isImported"},
				},
			},
			"pending": {Type: "object"},
			"markers": {Type: "object"},
		},
		Required: []string{"items"},
	}
}

type stateOut struct {
	Items   []storage.Item               `json:"items"`
	Pending map[string]inventory.Pending `json:"pending,omitempty"`
	Markers map[string]inventory.Marker  `json:"markers,omitempty"`
}

func stateOutput(st inventory.State, items []storage.Item) stateOut {
	return stateOut{Items: items, Pending: st.Pending, Markers: st.Markers}
}

// toMap marshals v and decodes it back to keep outputs uniform.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
