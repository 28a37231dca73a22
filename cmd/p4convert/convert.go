package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/kmateuszssak/p4c"
	"github.com/kmateuszssak/p4c/cmd/internal/cliutil"
	"github.com/kmateuszssak/p4c/internal/config"
)

const convertUsage = `p4convert convert - Convert one program description

Usage:
  p4convert convert [options] FILE

Options:
  -format F           Output format: p4, json or cbor (default from config)
  -keep-unreachable   Keep objects the entry controls never reach
  -h, --help          Show help

Formats:
  p4    The converted program as P4-16 source
  json  The rename report as JSON
  cbor  The rename report as canonical CBOR

Examples:
  p4convert convert router.yaml
  p4convert convert -o router.p4 router.yaml
  p4convert convert -format json router.yaml
  p4convert convert -vv router.yaml         # Trace logging
`

func (c *cli) cmdConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, convertUsage) }

	format := fs.String("format", "", "output format (p4, json, cbor)")
	keep := fs.Bool("keep-unreachable", false, "keep unreachable objects")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, convertUsage)
		return exitOK
	}

	if fs.NArg() != 1 {
		c.printError("expected exactly one program description")
		_, _ = fmt.Fprint(c.stderr, convertUsage)
		return exitError
	}
	path := fs.Arg(0)

	cfg, err := c.loadConfig()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if *format != "" {
		cfg.Output.Format = config.Format(*format)
	}
	if *keep {
		cfg.Convert.KeepUnreachable = true
	}
	if err := cfg.Validate(); err != nil {
		c.printError("%v", err)
		return exitError
	}

	res, err := p4c.ConvertFile(context.Background(), path, c.options(cfg)...)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	out, done, err := cliutil.GetOutput(c.OutputFile, c.stdout)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	defer done()

	if err := writeResult(out, cfg.Output.Format, programName(path), res); err != nil {
		c.printError("writing output: %v", err)
		return exitError
	}
	return exitOK
}

func writeResult(w io.Writer, format config.Format, name string, res *p4c.Result) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, newReport(name, res))
	case config.FormatCBOR:
		return writeCBOR(w, newReport(name, res))
	default:
		_, err := io.WriteString(w, res.Program.String())
		return err
	}
}
