package tools

import (
	"fmt"
	"sort"

	"pantrytracker"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a registry with every inventory and recipe tool.
// sc may be nil to skip import notifications.
func NewRegistry(inv Inventory, sc pantrytracker.SlackClient, channel string) *Registry {
	all := []Tool{
		NewInventoryList(inv),
		NewInventoryAdd(inv),
		NewInventoryRemove(inv),
		NewInventoryIncrement(inv),
		NewInventoryClear(inv),
		NewInventoryImportItem(inv),
		NewRecipeGenerate(inv),
		NewRecipeImport(inv, sc, channel),
	}

	registry := make(Registry, len(all))
	for _, t := range all {
		registry[t.Name()] = t
	}
	return &registry
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
