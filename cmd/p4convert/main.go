// Command p4convert converts P4-14 program descriptions to P4-16.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/kmateuszssak/p4c"
	"github.com/kmateuszssak/p4c/cmd/internal/cliutil"
	"github.com/kmateuszssak/p4c/internal/config"
)

// Exit codes.
const (
	exitOK      = 0 // success
	exitError   = 1 // user error or conversion failure
	exitPartial = 2 // some programs of a batch failed
)

const usage = `p4convert - P4-14 to P4-16 converter

Usage:
  p4convert <command> [options] [arguments]

Commands:
  convert Convert one program description
  all     Convert every description under one or more directories
  graph   Show the call graph of a program
  config  Print the effective configuration
  version Show version

Common options:
  -c, --config FILE  Read configuration from FILE (default: nearest p4convert.toml)
  -o, --output FILE  Write output to FILE instead of stdout
  -v, --verbose      Enable debug logging
  -vv                Enable trace logging (implies -v)
  -h, --help         Show help

Examples:
  p4convert convert router.yaml
  p4convert convert -format json router.yaml
  p4convert all -dir out programs/
  p4convert graph -edges router.yaml
  p4convert config
`

type cli struct {
	cliutil.GlobalFlags
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, cmd, cmdArgs := cliutil.ParseArgs(args)
	c := &cli{GlobalFlags: flags, stdout: stdout, stderr: stderr}

	if c.HelpFlag && cmd == "" {
		_, _ = fmt.Fprint(stdout, usage)
		return exitOK
	}

	if cmd == "" {
		_, _ = fmt.Fprint(stderr, usage)
		return exitError
	}

	switch cmd {
	case "convert":
		return c.cmdConvert(cmdArgs)
	case "all":
		return c.cmdAll(cmdArgs)
	case "graph":
		return c.cmdGraph(cmdArgs)
	case "config":
		return c.cmdConfig(cmdArgs)
	case "version":
		c.printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(stdout, usage)
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(stderr, usage)
		return exitError
	}
}

func (c *cli) setupLogger() *slog.Logger {
	if c.Verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.Verbose >= 2 {
		level = p4c.LevelTrace
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig reads the -c file, or the nearest p4convert.toml above the
// working directory, or returns the defaults.
func (c *cli) loadConfig() (*config.Config, error) {
	if c.ConfigFile != "" {
		return config.Load(c.ConfigFile)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.FindAndLoad(wd)
}

func (c *cli) options(cfg *config.Config) []p4c.Option {
	opts := []p4c.Option{p4c.WithConfig(cfg)}
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, p4c.WithLogger(logger))
	}
	return opts
}

func (c *cli) printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	_, _ = fmt.Fprintf(c.stdout, "p4convert %s\n", version)
}

func (c *cli) printError(format string, args ...any) {
	cliutil.PrintError(c.stderr, format, args...)
}
