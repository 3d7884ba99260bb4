// Package config loads the server's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/morph-tools-mcp/internal/grid"
	"github.com/ironsheep/morph-tools-mcp/internal/imaging"
	"github.com/ironsheep/morph-tools-mcp/internal/tree"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "MORPH_MCP_CONFIG"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds tunables shared by the CLI and the MCP server.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string `yaml:"log_level"`

	// Connectivity is the default planar adjacency for tools that do not
	// name one: "4" or "8".
	Connectivity string `yaml:"connectivity"`

	// CompressInterval is the number of node deletions between forced path
	// compressions while pruning trees.
	CompressInterval int `yaml:"compress_interval"`

	// MaxImagePixels rejects larger images at load time. Zero disables the limit.
	MaxImagePixels int `yaml:"max_image_pixels"`

	// BinaryThreshold is the gray level at or above which a pixel counts as
	// foreground when labeling binary images.
	BinaryThreshold uint8 `yaml:"binary_threshold"`

	// PreviewBackground is the "#RRGGBB" color of unlabeled pixels in label previews.
	PreviewBackground string `yaml:"preview_background"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:          "info",
		Connectivity:      "8",
		CompressInterval:  tree.DefaultCompressInterval,
		MaxImagePixels:    64 << 20,
		BinaryThreshold:   128,
		PreviewBackground: "#000000",
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from the
// file keep their default values. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Resolve picks the config path: the flag value if set, otherwise EnvPath.
func Resolve(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(EnvPath)
}

// WriteDefault writes the default configuration to path, creating parent
// directories as needed.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every field.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("%w: log_level %q, want info or debug", ErrInvalid, c.LogLevel)
	}
	if _, err := c.Adjacency(); err != nil {
		return err
	}
	if c.CompressInterval <= 0 {
		return fmt.Errorf("%w: compress_interval %d must be positive", ErrInvalid, c.CompressInterval)
	}
	if c.MaxImagePixels < 0 {
		return fmt.Errorf("%w: max_image_pixels %d is negative", ErrInvalid, c.MaxImagePixels)
	}
	if _, err := imaging.ParseHexColor(c.PreviewBackground); err != nil {
		return fmt.Errorf("%w: preview_background: %w", ErrInvalid, err)
	}
	return nil
}

// Adjacency parses Connectivity, accepting only planar adjacencies.
func (c Config) Adjacency() (grid.Adjacency, error) {
	adj, err := ParsePlanar(c.Connectivity)
	if err != nil {
		return grid.Adjacency{}, fmt.Errorf("%w: connectivity: %w", ErrInvalid, err)
	}
	return adj, nil
}

// ParsePlanar parses an adjacency name for 2-D images: "4" or "8".
func ParsePlanar(name string) (grid.Adjacency, error) {
	adj, err := grid.ParseAdjacency(name)
	if err != nil {
		return grid.Adjacency{}, err
	}
	if !adj.Planar() {
		return grid.Adjacency{}, fmt.Errorf("connectivity %q is not supported for images, use 4 or 8", name)
	}
	return adj, nil
}

// Background parses PreviewBackground.
func (c Config) Background() (color.RGBA, error) {
	return imaging.ParseHexColor(c.PreviewBackground)
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return c.LogLevel == "debug"
}
