package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAliases(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "aliases"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadAliases_FileNotFound(t *testing.T) {
	a, err := LoadAliases(t.TempDir())
	if err != nil {
		t.Fatalf("LoadAliases() returned error for missing file: %v", err)
	}
	if a == nil {
		t.Fatal("LoadAliases() returned nil")
	}
	if a.Len() != 0 {
		t.Errorf("expected no aliases, got %v", a.Aliases)
	}
}

func TestLoadAliases_CommentsAndBlankLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	writeAliases(t, dir, `# item aliases
# Format: label=Canonical


whole milk=Milk
`)

	a, err := LoadAliases(dir)
	if err != nil {
		t.Fatalf("LoadAliases() error: %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("expected 1 alias, got %d: %v", a.Len(), a.Aliases)
	}
	if got := a.Aliases["whole milk"]; got != "Milk" {
		t.Errorf("Aliases[\"whole milk\"] = %q, want %q", got, "Milk")
	}
}

func TestLoadAliases_InvalidLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	writeAliases(t, dir, `noequalssign
=Missing
lager=Beer
 =
sourdough=Bread
`)

	a, err := LoadAliases(dir)
	if err != nil {
		t.Fatalf("LoadAliases() error: %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("expected 2 aliases (only valid lines), got %d: %v", a.Len(), a.Aliases)
	}

	tests := []struct {
		label     string
		canonical string
	}{
		{"lager", "Beer"},
		{"sourdough", "Bread"},
	}
	for _, tt := range tests {
		if got := a.Aliases[tt.label]; got != tt.canonical {
			t.Errorf("Aliases[%q] = %q, want %q", tt.label, got, tt.canonical)
		}
	}
}

func TestLoadAliases_LabelContainingEquals(t *testing.T) {
	dir := t.TempDir()
	writeAliases(t, dir, "2=1 offer=Promo\n")

	a, err := LoadAliases(dir)
	if err != nil {
		t.Fatalf("LoadAliases() error: %v", err)
	}
	if got := a.Aliases["2=1 offer"]; got != "Promo" {
		t.Errorf("Aliases[\"2=1 offer\"] = %q, want %q", got, "Promo")
	}
}

func TestItemAliases_Resolve(t *testing.T) {
	a := &ItemAliases{Aliases: map[string]string{"lager": "Beer"}}

	if got := a.Resolve("lager"); got != "Beer" {
		t.Errorf("Resolve(lager) = %q, want Beer", got)
	}
	if got := a.Resolve("Milk"); got != "Milk" {
		t.Errorf("Resolve(Milk) = %q, want Milk", got)
	}

	var none *ItemAliases
	if got := none.Resolve("Milk"); got != "Milk" {
		t.Errorf("nil Resolve(Milk) = %q, want Milk", got)
	}
	if none.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", none.Len())
	}
}
