package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestBuiltin_KnownMiner(t *testing.T) {
	c := Builtin()
	hw, err := c.Get("Bitaxe Touch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hw.HashrateTHS != 1.6 {
		t.Errorf("expected 1.6 TH/s, got %v", hw.HashrateTHS)
	}
	if hw.PowerWatts != 22 {
		t.Errorf("expected 22 W, got %v", hw.PowerWatts)
	}
	if hw.Price.String() != "275" {
		t.Errorf("expected 275 EUR, got %s", hw.Price)
	}
}

func TestBuiltin_UnknownMiner(t *testing.T) {
	c := Builtin()
	_, err := c.Get("Antminer Z99")
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestBuiltin_NamesSortedAndComplete(t *testing.T) {
	c := Builtin()
	names := c.Names()
	if len(names) != c.Len() {
		t.Fatalf("expected %d names, got %d", c.Len(), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("names should be sorted, got %v", names)
	}
}

func TestLoadFile_MergesAndOverrides(t *testing.T) {
	path := writeCatalog(t, `
[[miners]]
name = "Garage Rig"
hashrate_ths = 3.0
power_watts = 120.0
price_eur = 400.0

[[miners]]
name = "Bitaxe Touch"
hashrate_ths = 1.6
power_watts = 22.0
price_eur = 199.0
`)
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hw, err := c.Get("Garage Rig")
	if err != nil {
		t.Fatalf("expected merged entry: %v", err)
	}
	if hw.HashrateTHS != 3.0 {
		t.Errorf("expected 3.0 TH/s, got %v", hw.HashrateTHS)
	}

	// File entry overrides the builtin price.
	hw, _ = c.Get("Bitaxe Touch")
	if hw.Price.String() != "199" {
		t.Errorf("expected overridden price 199, got %s", hw.Price)
	}

	// Untouched builtins survive the merge.
	if _, err := c.Get("S19"); err != nil {
		t.Errorf("builtin S19 should survive a merge: %v", err)
	}
}

func TestLoadFile_RejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"missing name", "[[miners]]\nhashrate_ths = 1.0\n"},
		{"zero hashrate", "[[miners]]\nname = \"x\"\nhashrate_ths = 0.0\n"},
		{"negative power", "[[miners]]\nname = \"x\"\nhashrate_ths = 1.0\npower_watts = -1.0\n"},
		{"negative price", "[[miners]]\nname = \"x\"\nhashrate_ths = 1.0\nprice_eur = -1.0\n"},
		{"malformed toml", "[[miners\n"},
	}
	for _, tt := range tests {
		path := writeCatalog(t, tt.toml)
		if _, err := LoadFile(path); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "miners.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
