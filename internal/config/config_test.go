package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-obj/pkg/formats"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test parser defaults
	if cfg.Parser.NormalWidth != 4 {
		t.Errorf("expected normal width 4, got %d", cfg.Parser.NormalWidth)
	}
	if cfg.Parser.TexCoordWidth != 4 {
		t.Errorf("expected texcoord width 4, got %d", cfg.Parser.TexCoordWidth)
	}

	// Test buffer defaults
	if len(cfg.Buffer.Layout) != 2 || cfg.Buffer.Layout[0] != "position" || cfg.Buffer.Layout[1] != "normal" {
		t.Errorf("expected layout [position normal], got %v", cfg.Buffer.Layout)
	}
	if cfg.Buffer.IndexType != "auto" {
		t.Errorf("expected index type 'auto', got %s", cfg.Buffer.IndexType)
	}

	// Test viewer defaults
	if cfg.Viewer.Width != 1280 || cfg.Viewer.Height != 720 || !cfg.Viewer.VSync {
		t.Errorf("unexpected viewer defaults %+v", cfg.Viewer)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
parser:
  normal_width: 3
  texcoord_width: 6
buffer:
  layout: [position, texcoord]
  index_type: uint32
cache:
  workers: 8
logging:
  level: "debug"
  log_file: "objtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Parser.NormalWidth != 3 {
		t.Errorf("expected normal width 3, got %d", cfg.Parser.NormalWidth)
	}
	if cfg.Parser.TexCoordWidth != 6 {
		t.Errorf("expected texcoord width 6, got %d", cfg.Parser.TexCoordWidth)
	}
	if len(cfg.Buffer.Layout) != 2 || cfg.Buffer.Layout[1] != "texcoord" {
		t.Errorf("expected layout [position texcoord], got %v", cfg.Buffer.Layout)
	}
	if cfg.Buffer.IndexType != "uint32" {
		t.Errorf("expected index type uint32, got %s", cfg.Buffer.IndexType)
	}
	if cfg.Cache.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Cache.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "objtool.log" {
		t.Errorf("expected log file 'objtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[parser]
normal_width = 5

[buffer]
layout = ["normal", "position"]
index_type = "uint16"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Parser.NormalWidth != 5 {
		t.Errorf("expected normal width 5, got %d", cfg.Parser.NormalWidth)
	}
	// Untouched values keep their defaults
	if cfg.Parser.TexCoordWidth != 4 {
		t.Errorf("expected texcoord width 4, got %d", cfg.Parser.TexCoordWidth)
	}
	layout, err := cfg.Buffer.ParseLayout()
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	if len(layout) != 2 || layout[0] != formats.AttrNormal || layout[1] != formats.AttrPosition {
		t.Errorf("expected layout [normal position], got %v", layout)
	}
	indexType, err := cfg.Buffer.ParseIndexType()
	if err != nil {
		t.Fatalf("ParseIndexType failed: %v", err)
	}
	if indexType != formats.IndexUint16 {
		t.Errorf("expected uint16, got %s", indexType)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
parser:
  normal_width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"narrow normals", func(c *Config) { c.Parser.NormalWidth = 2 }},
		{"narrow texcoords", func(c *Config) { c.Parser.TexCoordWidth = 0 }},
		{"unknown attribute", func(c *Config) { c.Buffer.Layout = []string{"position", "color"} }},
		{"unknown index type", func(c *Config) { c.Buffer.IndexType = "int8" }},
		{"no workers", func(c *Config) { c.Cache.Workers = 0 }},
		{"zero viewer height", func(c *Config) { c.Viewer.Height = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestParseLayoutDefault(t *testing.T) {
	for _, layout := range [][]string{nil, {}} {
		cfg := Default()
		cfg.Buffer.Layout = layout
		if err := cfg.Validate(); err != nil {
			t.Fatalf("empty layout should be valid: %v", err)
		}

		got, err := cfg.Buffer.ParseLayout()
		if err != nil {
			t.Fatalf("ParseLayout failed: %v", err)
		}
		if len(got) != 2 || got[0] != formats.AttrPosition || got[1] != formats.AttrNormal {
			t.Errorf("expected default layout, got %v", got)
		}

		// The fallback is a copy.
		got[0] = formats.AttrTexCoord
		if formats.DefaultOBJLayout[0] != formats.AttrPosition {
			t.Fatal("ParseLayout returned the shared default layout")
		}
	}
}

func TestParserOptions(t *testing.T) {
	opts := ParserConfig{NormalWidth: 3, TexCoordWidth: 5}.Options()
	if opts.NormalWidth != 3 || opts.TexCoordWidth != 5 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Keep the user's config directory out of the search
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create objtool.toml in current directory
	if err := os.WriteFile("objtool.toml", []byte("[parser]\nnormal_width = 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find objtool.toml in current directory")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" position, ,normal,texcoord ")
	want := []string{"position", "normal", "texcoord"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "width flags",
			setup: func() {
				*flagNormalWidth = 3
				*flagTexCoordWidth = 8
			},
			verify: func(cfg *Config) {
				if cfg.Parser.NormalWidth != 3 {
					t.Errorf("expected normal width 3, got %d", cfg.Parser.NormalWidth)
				}
				if cfg.Parser.TexCoordWidth != 8 {
					t.Errorf("expected texcoord width 8, got %d", cfg.Parser.TexCoordWidth)
				}
			},
			teardown: func() {
				*flagNormalWidth = 0
				*flagTexCoordWidth = 0
			},
		},
		{
			name: "layout flag",
			setup: func() {
				*flagLayout = "texcoord,position"
			},
			verify: func(cfg *Config) {
				if len(cfg.Buffer.Layout) != 2 || cfg.Buffer.Layout[0] != "texcoord" {
					t.Errorf("expected layout [texcoord position], got %v", cfg.Buffer.Layout)
				}
			},
			teardown: func() {
				*flagLayout = ""
			},
		},
		{
			name: "index type and workers flags",
			setup: func() {
				*flagIndexType = "uint16"
				*flagWorkers = 2
			},
			verify: func(cfg *Config) {
				if cfg.Buffer.IndexType != "uint16" {
					t.Errorf("expected index type uint16, got %s", cfg.Buffer.IndexType)
				}
				if cfg.Cache.Workers != 2 {
					t.Errorf("expected 2 workers, got %d", cfg.Cache.Workers)
				}
			},
			teardown: func() {
				*flagIndexType = ""
				*flagWorkers = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
parser:
  normal_width: 5
  texcoord_width: 6
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagNormalWidth = 3
	defer func() {
		*flagConfig = ""
		*flagNormalWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Normal width should be from flag (3), not file (5)
	if cfg.Parser.NormalWidth != 3 {
		t.Errorf("expected normal width 3 from flag, got %d", cfg.Parser.NormalWidth)
	}

	// Texcoord width should be from file (6) since no flag override
	if cfg.Parser.TexCoordWidth != 6 {
		t.Errorf("expected texcoord width 6 from file, got %d", cfg.Parser.TexCoordWidth)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Parser.NormalWidth = 7
			cfg.Buffer.Layout = []string{"texcoord"}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if loaded.Parser.NormalWidth != 7 {
				t.Errorf("expected normal width 7, got %d", loaded.Parser.NormalWidth)
			}
			if len(loaded.Buffer.Layout) != 1 || loaded.Buffer.Layout[0] != "texcoord" {
				t.Errorf("expected layout [texcoord], got %v", loaded.Buffer.Layout)
			}
		})
	}
}
