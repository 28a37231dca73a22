package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kmateuszssak/p4c"
)

const allUsage = `p4convert all - Convert every description under one or more directories

Usage:
  p4convert all [options] DIR...

Descriptions (.yaml, .yml, .json) are found recursively. When a name
appears in several directories the first one listed wins.

Options:
  -dir OUT    Write each converted program to OUT/<name>.p4
  -h, --help  Show help

Examples:
  p4convert all programs/
  p4convert all -dir build/p4 programs/ vendor/programs/
`

func (c *cli) cmdAll(args []string) int {
	fs := flag.NewFlagSet("all", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, allUsage) }

	outDir := fs.String("dir", "", "output directory")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, allUsage)
		return exitOK
	}

	if fs.NArg() == 0 {
		c.printError("no directories specified")
		_, _ = fmt.Fprint(c.stderr, allUsage)
		return exitError
	}

	var sources []p4c.Source
	for _, dir := range fs.Args() {
		src, err := p4c.DirTree(dir)
		if err != nil {
			_, _ = fmt.Fprintf(c.stderr, "warning: cannot access path %s: %v\n", dir, err)
			continue
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		c.printError("%v", p4c.ErrNoSources)
		return exitError
	}

	cfg, err := c.loadConfig()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	results, err := p4c.ConvertAll(context.Background(), p4c.Multi(sources...), c.options(cfg)...)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			c.printError("%v", err)
			return exitError
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			_, _ = fmt.Fprintf(c.stdout, "FAIL %s: %v\n", r.Name, r.Err)
			continue
		}
		if *outDir != "" {
			dst := filepath.Join(*outDir, r.Name+".p4")
			if err := os.WriteFile(dst, []byte(r.Result.Program.String()), 0o644); err != nil {
				c.printError("%v", err)
				return exitError
			}
		}
		_, _ = fmt.Fprintf(c.stdout, "ok   %s (%d declarations, %d renamed, %d unreachable)\n",
			r.Name, len(r.Result.Program.Declarations), len(r.Result.Renames), len(r.Result.Unreachable))
	}

	_, _ = fmt.Fprintf(c.stdout, "\n%d programs, %d failed\n", len(results), failed)
	if failed > 0 {
		return exitPartial
	}
	return exitOK
}
