package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RootFamily != "F1" {
		t.Errorf("RootFamily = %q, want F1", cfg.RootFamily)
	}
	if cfg.LayoutMaxDepth != 5 {
		t.Errorf("LayoutMaxDepth = %d, want 5", cfg.LayoutMaxDepth)
	}
	if cfg.MaxSiblingDepth() != 5 {
		t.Errorf("MaxSiblingDepth() = %d, want to follow LayoutMaxDepth", cfg.MaxSiblingDepth())
	}
	if cfg.LayoutMaxSiblingFamilyDepth != 1 {
		t.Errorf("LayoutMaxSiblingFamilyDepth = %d, want 1", cfg.LayoutMaxSiblingFamilyDepth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestMaxSiblingDepthFollowsMaxDepth(t *testing.T) {
	cfg := Default()
	cfg.LayoutMaxDepth = 2
	if got := cfg.MaxSiblingDepth(); got != 2 {
		t.Errorf("MaxSiblingDepth() = %d, want 2", got)
	}

	cfg.LayoutMaxSiblingDepth = 0
	if got := cfg.MaxSiblingDepth(); got != 0 {
		t.Errorf("MaxSiblingDepth() = %d, want 0", got)
	}
}

func TestDecode(t *testing.T) {
	input := `
[ged2dot]
input = "family.ged"
rootFamily = "F3"
layoutMaxDepth = 1
layoutMaxSiblingDepth = 0
layout = "Descendants"
indiBlacklist = ["P526", " P525 "]
inputEncoding = "ISO 8859-15"
`
	cfg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if cfg.Input != "family.ged" || cfg.RootFamily != "F3" {
		t.Errorf("Decode() input/root = %q/%q", cfg.Input, cfg.RootFamily)
	}
	if cfg.LayoutMaxDepth != 1 || cfg.MaxSiblingDepth() != 0 {
		t.Errorf("Decode() depths = %d/%d, want 1/0", cfg.LayoutMaxDepth, cfg.MaxSiblingDepth())
	}
	if cfg.ConsiderAgeDead != DefaultConsiderAgeDead {
		t.Errorf("unset key should keep default, got %d", cfg.ConsiderAgeDead)
	}
	if v, err := cfg.Variant(); err != nil || v != VariantDescendants {
		t.Errorf("Variant() = %v, %v; want descendants", v, err)
	}
	excluded := cfg.Excluded()
	if !excluded["P526"] || !excluded["P525"] || len(excluded) != 2 {
		t.Errorf("Excluded() = %v", excluded)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("[ged2dot\nrootFamily ="))
	if !gerrors.Is(err, gerrors.ErrCodeInvalidConfig) {
		t.Errorf("Decode() error = %v, want %v", err, gerrors.ErrCodeInvalidConfig)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ged2dot.toml")
	if err := os.WriteFile(path, []byte("[ged2dot]\nrootFamily = \"F9\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.RootFamily != "F9" {
		t.Errorf("RootFamily = %q, want F9", cfg.RootFamily)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !gerrors.Is(err, gerrors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, gerrors.ErrCodeFileNotFound)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.RootFamily = "F7"
	cfg.IndiBlacklist = []string{"P1"}

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "[ged2dot]") {
		t.Errorf("Write() output missing table header:\n%s", buf.String())
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if back.RootFamily != "F7" || len(back.IndiBlacklist) != 1 {
		t.Errorf("round trip lost values: %+v", back)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   gerrors.Code
	}{
		{"empty root", func(c *Config) { c.RootFamily = "" }, gerrors.ErrCodeInvalidConfig},
		{"negative depth", func(c *Config) { c.LayoutMaxDepth = -1 }, gerrors.ErrCodeInvalidConfig},
		{"negative sibling depth", func(c *Config) { c.LayoutMaxSiblingDepth = -2 }, gerrors.ErrCodeInvalidConfig},
		{"negative sibling family depth", func(c *Config) { c.LayoutMaxSiblingFamilyDepth = -1 }, gerrors.ErrCodeInvalidConfig},
		{"depth too large", func(c *Config) { c.LayoutMaxDepth = gerrors.MaxDepthLimit + 1 }, gerrors.ErrCodeInvalidConfig},
		{"sibling family depth too large", func(c *Config) { c.LayoutMaxSiblingFamilyDepth = 1 << 30 }, gerrors.ErrCodeInvalidConfig},
		{"negative age dead", func(c *Config) { c.ConsiderAgeDead = -1 }, gerrors.ErrCodeInvalidConfig},
		{"unknown layout", func(c *Config) { c.Layout = "Sideways" }, gerrors.ErrCodeInvalidConfig},
		{"unknown encoding", func(c *Config) { c.InputEncoding = "klingon" }, gerrors.ErrCodeInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !gerrors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestValidateZeroAgeDead(t *testing.T) {
	cfg := Default()
	cfg.ConsiderAgeDead = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"", VariantAncestors, false},
		{"ancestors", VariantAncestors, false},
		{"Descendants", VariantDescendants, false},
		{" descendants ", VariantDescendants, false},
		{"tower", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVariant(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVariant(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVariant(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncoding(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf-8", "ISO 8859-15", "ISO-8859-1", ""} {
		if _, err := Encoding(name); err != nil {
			t.Errorf("Encoding(%q) error: %v", name, err)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("P526, P525,,  ")
	if len(got) != 2 || got[0] != "P526" || got[1] != "P525" {
		t.Errorf("SplitList() = %v", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Errorf("SplitList(\"\") = %v, want empty", got)
	}
}
