package tools

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/oceanai/sagarmitra/internal/store"

	_ "modernc.org/sqlite"
)

func testRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := store.OpenDB(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewRegistry(st, nil, nil), st
}

func TestRegistryBuiltins(t *testing.T) {
	r, _ := testRegistry(t)

	for _, name := range []string{
		"get_weather",
		"get_catch_history",
		"get_catch_details",
		"get_map_data",
		"get_market_prices",
	} {
		if r.Get(name) == nil {
			t.Errorf("expected builtin tool %s registered", name)
		}
	}

	specs := r.List()
	if len(specs) != 5 {
		t.Fatalf("expected 5 tool specs, got %d", len(specs))
	}
	for _, spec := range specs {
		if spec["type"] != "function" {
			t.Errorf("expected function type spec, got %v", spec["type"])
		}
		fn, ok := spec["function"].(map[string]any)
		if !ok || fn["name"] == "" {
			t.Errorf("malformed function spec: %v", spec)
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r, _ := testRegistry(t)
	if _, err := r.Execute(context.Background(), "no_such_tool", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestExecuteJSONInvalidArguments(t *testing.T) {
	r, _ := testRegistry(t)
	if _, err := r.ExecuteJSON(context.Background(), "get_map_data", "{not json"); err == nil {
		t.Fatal("expected error for invalid JSON arguments")
	}
}

func TestWeatherToolUnconfigured(t *testing.T) {
	r, _ := testRegistry(t)
	out, err := r.Execute(context.Background(), "get_weather", map[string]any{
		"latitude":  15.49,
		"longitude": 73.82,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Errorf("expected unconfigured notice, got %q", out)
	}
}
