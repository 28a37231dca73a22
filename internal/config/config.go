// Package config handles p4convert.toml converter configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "p4convert.toml"

// ErrUnknownFormat is returned for an output format other than p4, json
// or cbor.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects what the CLI writes.
type Format string

const (
	// FormatP4 writes the converted program as P4-16 text.
	FormatP4 Format = "p4"
	// FormatJSON writes the rename report as JSON.
	FormatJSON Format = "json"
	// FormatCBOR writes the rename report as canonical CBOR.
	FormatCBOR Format = "cbor"
)

// Formats returns the supported output formats.
func Formats() []Format {
	return []Format{FormatP4, FormatJSON, FormatCBOR}
}

// Config is a p4convert.toml configuration.
type Config struct {
	Convert Convert `toml:"convert"`
	Output  Output  `toml:"output"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Convert configures the conversion.
type Convert struct {
	// Ingress and Egress name the legacy entry controls.
	Ingress string `toml:"ingress"`
	Egress  string `toml:"egress"`
	// KeepUnreachable keeps objects the entry controls never reach.
	KeepUnreachable bool `toml:"keep-unreachable"`
	// RegisterWidth is the element width of registers declaring neither
	// a width nor a layout.
	RegisterWidth int `toml:"register-width"`
}

// Output configures what the CLI writes.
type Output struct {
	Format Format `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Convert: Convert{
			Ingress:       "ingress",
			Egress:        "egress",
			RegisterWidth: 32,
		},
		Output: Output{Format: FormatP4},
	}
}

// Parse decodes TOML data over the defaults. name is used in errors.
// Keys the configuration does not define are rejected.
func Parse(data []byte, name string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir looking for p4convert.toml and loads
// the first one found. Without one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Convert.Ingress == "" {
		return errors.New("convert.ingress must not be empty")
	}
	if c.Convert.Egress == "" {
		return errors.New("convert.egress must not be empty")
	}
	if c.Convert.Ingress == c.Convert.Egress {
		return fmt.Errorf("convert.ingress and convert.egress are both %q", c.Convert.Ingress)
	}
	if c.Convert.RegisterWidth <= 0 {
		return fmt.Errorf("convert.register-width must be positive, got %d", c.Convert.RegisterWidth)
	}
	if !slices.Contains(Formats(), c.Output.Format) {
		return fmt.Errorf("%w %q", ErrUnknownFormat, c.Output.Format)
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
