package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exiletools/statdesc/descfile"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(text), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return dir
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != descfile.DefaultLanguage {
		t.Fatalf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, descfile.DefaultLanguage)
	}
	if cfg.Tolerance() != 1 {
		t.Fatalf("Tolerance = %v, want 1", cfg.Tolerance())
	}
}

func TestLoadFullConfig(t *testing.T) {
	dir := writeConfig(t, `default_language: Russian
reverse_tolerance: 0.5
custom_file: custom.txt
hardcoded_file: hardcoded.txt
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != "Russian" {
		t.Fatalf("DefaultLanguage = %q", cfg.DefaultLanguage)
	}
	if cfg.Tolerance() != 0.5 {
		t.Fatalf("Tolerance = %v, want 0.5", cfg.Tolerance())
	}
	if cfg.CustomFile != "custom.txt" || cfg.HardcodedFile != "hardcoded.txt" {
		t.Fatalf("files = %q, %q", cfg.CustomFile, cfg.HardcodedFile)
	}
}

func TestLoadZeroToleranceIsExplicit(t *testing.T) {
	dir := writeConfig(t, "reverse_tolerance: 0\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// 0 means exact matching, not "unset".
	if cfg.Tolerance() != 0 {
		t.Fatalf("Tolerance = %v, want 0", cfg.Tolerance())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"malformed yaml", "default_language: [\n"},
		{"unknown language", "default_language: Klingon\n"},
		{"negative tolerance", "reverse_tolerance: -1\n"},
	}
	for _, tt := range tests {
		dir := writeConfig(t, tt.text)
		if _, err := Load(dir); err == nil {
			t.Fatalf("%s: Load should fail", tt.name)
		}
	}
}
