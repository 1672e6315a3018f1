package tools

import (
	"context"
	"testing"
)

func TestRegistryInvoke(t *testing.T) {
	r := NewRegistry()
	store := NewFileStore(DefaultFileSeed())
	r.Register(NewReadFileTool(store))

	val, err := r.Invoke(context.Background(), "read_file", map[string]any{"path": "/docs/readme.md"})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if val != "Welcome!\n" {
		t.Fatalf("unexpected content: %q", val)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "nope", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRegistryListOrdered(t *testing.T) {
	r := NewRegistry()
	store := NewFileStore(nil)
	r.Register(NewSearchFilesTool(store))
	r.Register(NewDeleteFileTool(store))
	r.Register(NewReadFileTool(store))

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(list))
	}
	if list[0].Name() != "delete_file" || list[2].Name() != "search_files" {
		t.Fatalf("tools not ordered by name: %s, %s, %s", list[0].Name(), list[1].Name(), list[2].Name())
	}
}

func TestToolTiers(t *testing.T) {
	store := NewFileStore(nil)
	if tier := ToolTier(NewReadFileTool(store)); tier != TierReadOnly {
		t.Fatalf("read_file tier = %d", tier)
	}
	if tier := ToolTier(NewDeleteFileTool(store)); tier != TierDestructive {
		t.Fatalf("delete_file tier = %d", tier)
	}
}
