// Package tools defines the tools available to the agent.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/oceanai/sagarmitra/internal/store"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string                                                         `json:"name"`
	Description string                                                         `json:"description"`
	Parameters  map[string]any                                                 `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// Registry holds available tools.
type Registry struct {
	tools   map[string]*Tool
	store   *store.Store
	weather *WeatherClient
	logger  *slog.Logger
}

// NewRegistry creates a tool registry. weather may be nil when no API
// key is configured; the weather tool then reports that to the model.
func NewRegistry(st *store.Store, weather *WeatherClient, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		tools:   make(map[string]*Tool),
		store:   st,
		weather: weather,
		logger:  logger.With("component", "tools"),
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	r.Register(&Tool{
		Name:        "get_weather",
		Description: "Get current sea weather and 3-hour forecast for fishing. Provide the latitude and longitude of the location. Optionally provide a human-readable location name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"latitude": map[string]any{
					"type":        "number",
					"description": "Latitude of the location (e.g. 15.4909 for Goa)",
				},
				"longitude": map[string]any{
					"type":        "number",
					"description": "Longitude of the location (e.g. 73.8278 for Goa)",
				},
				"location_name": map[string]any{
					"type":        "string",
					"description": "Optional human-readable place name",
				},
			},
			"required": []string{"latitude", "longitude"},
		},
		Handler: r.handleGetWeather,
	})

	r.Register(&Tool{
		Name:        "get_catch_history",
		Description: "Get the user's recent catch history (fish species detected from images). Results are paginated; page 1 is the most recent.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (1-based). Default 1.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Max results per page. Default 5.",
				},
			},
		},
		Handler: r.handleCatchHistory,
	})

	r.Register(&Tool{
		Name:        "get_catch_details",
		Description: "Get the detailed analysis of a specific catch using its catch_id. This provides detailed metrics like weight, quality grade, and market value.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"catch_id": map[string]any{
					"type":        "string",
					"description": "The unique identifier of the catch to look up",
				},
			},
			"required": []string{"catch_id"},
		},
		Handler: r.handleCatchDetails,
	})

	r.Register(&Tool{
		Name:        "get_map_data",
		Description: "Get ocean zone data, nearby harbors/markets, and restricted fishing areas. Provide latitude/longitude to get nearby data, or a text query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"latitude": map[string]any{
					"type":        "number",
					"description": "User's latitude (optional)",
				},
				"longitude": map[string]any{
					"type":        "number",
					"description": "User's longitude (optional)",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Free text query like 'harbors near Mumbai' (optional)",
				},
			},
		},
		Handler: r.handleMapData,
	})

	r.Register(&Tool{
		Name:        "get_market_prices",
		Description: "Get current fish market prices at Indian fishing ports. Provide port_name to see prices at a specific port, or fish_species to find where that fish is sold and at what price.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"port_name": map[string]any{
					"type":        "string",
					"description": "Name of the port/city (e.g. 'Mumbai', 'Kochi')",
				},
				"fish_species": map[string]any{
					"type":        "string",
					"description": "Name of a fish species to look up across all ports",
				},
			},
		},
		Handler: r.handleMarketPrices,
	})
}

// Register adds a tool to the registry.
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// List returns all tools for the model.
func (r *Registry) List() []map[string]any {
	var result []map[string]any
	for _, t := range r.tools {
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Execute runs a tool by name with given arguments.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool := r.tools[name]
	if tool == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return tool.Handler(ctx, args)
}

// ExecuteJSON runs a tool with raw JSON arguments.
func (r *Registry) ExecuteJSON(ctx context.Context, name string, argsJSON string) (string, error) {
	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	return r.Execute(ctx, name, args)
}

// floatArg reads a numeric argument, tolerating JSON integers.
func floatArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// intArg reads an integer argument with a default.
func intArg(args map[string]any, key string, def int) int {
	if f, ok := floatArg(args, key); ok {
		return int(f)
	}
	return def
}
