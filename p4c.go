// Package p4c converts P4-14 programs into P4-16 programs targeting the
// v1model architecture.
//
// The input is either a legacy tree built by an upstream front end or a
// program description file (YAML or JSON) read by ConvertFile. The output
// is a P4-16 program tree whose String method prints P4-16 source, plus
// the renames and side tables later passes consume.
package p4c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/config"
	"github.com/kmateuszssak/p4c/internal/convert"
	"github.com/kmateuszssak/p4c/internal/loader"
	"github.com/kmateuszssak/p4c/internal/types"
	"github.com/kmateuszssak/p4c/legacy"
)

// ErrNoProgram is returned when Convert is called without a program.
var ErrNoProgram = errors.New("no program to convert")

// ErrInvariant matches every error caused by malformed input that the
// converter detected while building the output.
var ErrInvariant = convert.ErrInvariant

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item logging (registrations, converted constructs, edges).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

type (
	// Result is a converted program with its renames, varbit extracts,
	// call graph and the objects dropped as unreachable.
	Result = convert.Result
	// Rename records an object whose output name differs from its
	// legacy name.
	Rename = convert.Rename
	// Converter converts each kind of legacy construct. Embed
	// DefaultConverter and override methods to customize output.
	Converter = convert.Converter
	// DefaultConverter is the standard v1model conversion.
	DefaultConverter = convert.DefaultConverter
	// Structure is the state of one conversion, passed to Converter
	// methods.
	Structure = convert.Structure

	// Config holds the settings of a p4convert.toml file.
	Config = config.Config
	// ConvertSettings is the [convert] table of Config: entry control
	// names, KeepUnreachable and the default register width.
	ConvertSettings = config.Convert
)

// DefaultConfig returns the settings used when no configuration is given.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a p4convert.toml file.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// ParseConfig decodes p4convert.toml content. name is used in errors.
func ParseConfig(data []byte, name string) (*Config, error) { return config.Parse(data, name) }

// FindConfig walks up from dir to the nearest p4convert.toml. Without
// one it returns DefaultConfig.
func FindConfig(dir string) (*Config, error) { return config.FindAndLoad(dir) }

// Option configures Convert, ConvertFile and ConvertAll.
type Option func(*convertConfig)

type convertConfig struct {
	logger    *slog.Logger
	cfg       *config.Config
	converter Converter
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *convertConfig) { c.logger = logger }
}

// WithConfig sets the conversion settings, usually read with LoadConfig.
// Without it the settings of DefaultConfig apply.
func WithConfig(cfg *Config) Option {
	return func(c *convertConfig) { c.cfg = cfg }
}

// WithConverter replaces the construct converter.
func WithConverter(conv Converter) Option {
	return func(c *convertConfig) { c.converter = conv }
}

func buildConfig(opts []Option) convertConfig {
	c := convertConfig{cfg: config.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c
}

func (c convertConfig) options() convert.Options {
	return convert.Options{
		Logger:          c.logger,
		Converter:       c.converter,
		Ingress:         c.cfg.Convert.Ingress,
		Egress:          c.cfg.Convert.Egress,
		KeepUnreachable: c.cfg.Convert.KeepUnreachable,
		RegisterWidth:   c.cfg.Convert.RegisterWidth,
	}
}

// Convert converts a legacy program.
//
// Example:
//
//	res, err := p4c.Convert(prog, p4c.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.Program)
func Convert(prog *legacy.Program, opts ...Option) (*Result, error) {
	if prog == nil {
		return nil, ErrNoProgram
	}
	return convertProgram(prog, buildConfig(opts))
}

func convertProgram(prog *legacy.Program, c convertConfig) (*Result, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	res, err := convert.Run(prog, c.options())
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", prog.Name, err)
	}
	return res, nil
}

// ConvertBytes converts the program description in data. name is used in
// error positions and as the default program name.
func ConvertBytes(data []byte, name string, opts ...Option) (*Result, error) {
	c := buildConfig(opts)
	l, err := loader.New(types.Component(c.logger, "loader"))
	if err != nil {
		return nil, err
	}
	prog, err := l.Load(data, name)
	if err != nil {
		return nil, err
	}
	return convertProgram(prog, c)
}

// ConvertFile reads and converts the program description at path.
func ConvertFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := buildConfig(opts)
	l, err := loader.New(types.Component(c.logger, "loader"))
	if err != nil {
		return nil, err
	}
	prog, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return convertProgram(prog, c)
}
