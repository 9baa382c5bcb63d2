package docload

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFromJSONL(t *testing.T) {
	path := writeJSONL(t, `{"id":"d1","title":"Q1 report","text":"Revenue grew 12%."}
{"id":"d2","text":"Budget overrun noted.","language":"en"}

{"id":"d3","text":"Proposal body.","html":false}
`)
	items, err := LoadFromJSONL(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "d1" || items[0].Title != "Q1 report" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestLoadFromJSONLSkipsBadLines(t *testing.T) {
	path := writeJSONL(t, `{"id":"good","text":"valid"}
not json at all
{"id":"empty","text":""}
`)
	items, err := LoadFromJSONL(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 1 || items[0].ID != "good" {
		t.Fatalf("expected only the valid item, got %+v", items)
	}
}

func TestLoadFromJSONLEmpty(t *testing.T) {
	path := writeJSONL(t, "\n\n")
	if _, err := LoadFromJSONL(path); err == nil {
		t.Fatal("expected error for empty file")
	}
	if _, err := LoadFromJSONL(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
