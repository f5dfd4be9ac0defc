package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates the travel tool set over a dataset store and a weather
// forecaster.
func NewRegistry(store *Store, forecaster Forecaster) *Registry {
	registry := Registry{}
	for _, t := range []Tool{
		NewFlightSearch(store),
		NewHotelRecommendation(store),
		NewPlacesDiscovery(store),
		NewWeatherForCity(forecaster),
		NewBudgetEstimation(),
		NewQuickBudgetCalculator(),
	} {
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

// Invoke runs the named tool. Unknown names come back as an error Result like
// any other tool failure.
func (r *Registry) Invoke(ctx context.Context, name string, input RawInput) Result {
	tool, err := r.GetTool(name)
	if err != nil {
		return Failure(fmt.Sprintf("Unknown tool %q. Available tools: %s", name, strings.Join(r.Names(), ", ")))
	}
	return Invoke(ctx, tool, input)
}

// Names lists the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(*r))
	for name := range *r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
