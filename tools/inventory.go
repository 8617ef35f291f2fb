package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"pantrytracker/inventory"
)

// InventoryList returns the visible inventory, optionally filtered by name.
type InventoryList struct{ inv Inventory }

func NewInventoryList(inv Inventory) *InventoryList { return &InventoryList{inv: inv} }

func (t *InventoryList) Name() string  { return "inventory_list" }
func (t *InventoryList) Title() string { return "List Inventory" }
func (t *InventoryList) Description() string {
	return "Refreshes and returns the pantry inventory, filtered by a case-insensitive name search when given."
}

func (t *InventoryList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"search": {Type: "string"},
		},
	}
}

func (t *InventoryList) OutputSchema() *jsonschema.Schema { return itemsSchema() }

func (t *InventoryList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	st, err := t.inv.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	search, _ := input["search"].(string)
	return toMap(stateOutput(st, st.Search(search)))
}

// itemTool runs one single-item inventory mutation.
type itemTool struct {
	name        string
	title       string
	description string
	run         func(ctx context.Context, name string) (inventory.State, error)
}

func (t *itemTool) Name() string        { return t.name }
func (t *itemTool) Title() string       { return t.title }
func (t *itemTool) Description() string { return t.description }

func (t *itemTool) InputSchema() *jsonschema.Schema  { return nameSchema("Item name, the unique inventory key") }
func (t *itemTool) OutputSchema() *jsonschema.Schema { return itemsSchema() }

func (t *itemTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	name, err := stringArg(input, "name")
	if err != nil {
		return nil, err
	}
	st, err := t.run(ctx, name)
	if err != nil {
		return nil, err
	}
	return toMap(stateOutput(st, st.Items()))
}

func NewInventoryAdd(inv Inventory) Tool {
	return &itemTool{
		name:        "inventory_add",
		title:       "Add Item",
		description: "Adds one unit of an item, creating it with quantity 1 if absent. Imported items keep their quantity.",
		run:         inv.Add,
	}
}

func NewInventoryRemove(inv Inventory) Tool {
	return &itemTool{
		name:        "inventory_remove",
		title:       "Remove Item",
		description: "Removes one unit of an item. The last unit, or an imported item, is deleted after a short delay.",
		run:         inv.Remove,
	}
}

func NewInventoryIncrement(inv Inventory) Tool {
	return &itemTool{
		name:        "inventory_increment",
		title:       "Increase Quantity",
		description: "Increases the quantity of an existing, non-imported item by one.",
		run:         inv.Increment,
	}
}

func NewInventoryImportItem(inv Inventory) Tool {
	return &itemTool{
		name:        "inventory_import_item",
		title:       "Import Ingredient",
		description: "Adds a single ingredient as an imported item.",
		run:         inv.AddImported,
	}
}

// InventoryClear deletes every item.
type InventoryClear struct{ inv Inventory }

func NewInventoryClear(inv Inventory) *InventoryClear { return &InventoryClear{inv: inv} }

func (t *InventoryClear) Name() string        { return "inventory_clear" }
func (t *InventoryClear) Title() string       { return "Remove All Items" }
func (t *InventoryClear) Description() string { return "Deletes every item in the inventory." }

func (t *InventoryClear) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *InventoryClear) OutputSchema() *jsonschema.Schema { return itemsSchema() }

func (t *InventoryClear) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	st, err := t.inv.RemoveAll(ctx)
	if err != nil {
		return nil, err
	}
	return toMap(stateOutput(st, st.Items()))
}
