// Package config handles objtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-obj/pkg/formats"
)

// Config holds all objtool settings.
type Config struct {
	Parser  ParserConfig  `yaml:"parser" toml:"parser"`
	Buffer  BufferConfig  `yaml:"buffer" toml:"buffer"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Viewer  ViewerConfig  `yaml:"viewer" toml:"viewer"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ParserConfig holds OBJ attribute padding.
type ParserConfig struct {
	NormalWidth   int `yaml:"normal_width" toml:"normal_width"`
	TexCoordWidth int `yaml:"texcoord_width" toml:"texcoord_width"`
}

// BufferConfig holds vertex/index buffer generation settings.
type BufferConfig struct {
	Layout    []string `yaml:"layout" toml:"layout"`         // e.g. [position, normal]
	IndexType string   `yaml:"index_type" toml:"index_type"` // auto, uint8, uint16, uint32
}

// CacheConfig holds mesh cache settings.
type CacheConfig struct {
	Workers int `yaml:"workers" toml:"workers"` // Concurrent parses for batch commands
}

// ViewerConfig holds objview window settings.
type ViewerConfig struct {
	Width    int  `yaml:"width" toml:"width"`
	Height   int  `yaml:"height" toml:"height"`
	VSync    bool `yaml:"vsync" toml:"vsync"`
	CenterXZ bool `yaml:"center_xz" toml:"center_xz"`
	// ZUp tilts meshes authored with +Z up so they stand upright.
	ZUp bool `yaml:"z_up" toml:"z_up"`
	// ScreenshotDir receives F12 captures; empty means the working directory.
	ScreenshotDir string `yaml:"screenshot_dir" toml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			NormalWidth:   formats.DefaultOBJPadWidth,
			TexCoordWidth: formats.DefaultOBJPadWidth,
		},
		Buffer: BufferConfig{
			Layout:    layoutNames(formats.DefaultOBJLayout),
			IndexType: "auto",
		},
		Cache: CacheConfig{
			Workers: 4,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every setting can be applied.
func (c *Config) Validate() error {
	var errs []error
	if c.Parser.NormalWidth < formats.MinOBJPadWidth {
		errs = append(errs, fmt.Errorf("parser.normal_width must be at least %d, got %d",
			formats.MinOBJPadWidth, c.Parser.NormalWidth))
	}
	if c.Parser.TexCoordWidth < formats.MinOBJPadWidth {
		errs = append(errs, fmt.Errorf("parser.texcoord_width must be at least %d, got %d",
			formats.MinOBJPadWidth, c.Parser.TexCoordWidth))
	}
	if _, err := c.Buffer.ParseLayout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Buffer.ParseIndexType(); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.Workers < 1 {
		errs = append(errs, fmt.Errorf("cache.workers must be positive, got %d", c.Cache.Workers))
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height))
	}
	return errors.Join(errs...)
}

// Options converts parser settings to OBJ parser options.
func (p ParserConfig) Options() formats.OBJOptions {
	return formats.OBJOptions{
		NormalWidth:   p.NormalWidth,
		TexCoordWidth: p.TexCoordWidth,
	}
}

// ParseLayout converts the layout names to attributes. An empty layout
// means formats.DefaultOBJLayout.
func (b BufferConfig) ParseLayout() ([]formats.OBJAttribute, error) {
	if len(b.Layout) == 0 {
		return append([]formats.OBJAttribute(nil), formats.DefaultOBJLayout...), nil
	}
	layout := make([]formats.OBJAttribute, 0, len(b.Layout))
	for _, name := range b.Layout {
		attr, err := formats.ParseOBJAttribute(name)
		if err != nil {
			return nil, fmt.Errorf("buffer.layout: %w", err)
		}
		layout = append(layout, attr)
	}
	return layout, nil
}

// ParseIndexType converts the index type name.
func (b BufferConfig) ParseIndexType() (formats.IndexType, error) {
	t, err := formats.ParseIndexType(b.IndexType)
	if err != nil {
		return 0, fmt.Errorf("buffer.index_type: %w", err)
	}
	return t, nil
}

// splitList splits a comma separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func layoutNames(layout []formats.OBJAttribute) []string {
	names := make([]string, len(layout))
	for i, attr := range layout {
		names[i] = attr.String()
	}
	return names
}
