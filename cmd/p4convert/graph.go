package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/kmateuszssak/p4c"
	"github.com/kmateuszssak/p4c/cmd/internal/cliutil"
	"github.com/kmateuszssak/p4c/internal/graph"
)

const graphUsage = `p4convert graph - Show the call graph of a program

Usage:
  p4convert graph [options] FILE

Options:
  -edges      List every edge, grouped by relation
  -cycles     Report call cycles among controls and actions
  -h, --help  Show help

Examples:
  p4convert graph router.yaml
  p4convert graph -edges router.yaml
`

func relations() []graph.Relation {
	return graph.Relations()
}

func (c *cli) cmdGraph(args []string) int {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, graphUsage) }

	edges := fs.Bool("edges", false, "list every edge")
	cycles := fs.Bool("cycles", false, "report call cycles")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, graphUsage)
		return exitOK
	}

	if fs.NArg() != 1 {
		c.printError("expected exactly one program description")
		_, _ = fmt.Fprint(c.stderr, graphUsage)
		return exitError
	}

	cfg, err := c.loadConfig()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	res, err := p4c.ConvertFile(context.Background(), fs.Arg(0), c.options(cfg)...)
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

	printGraphSummary(out, res)
	if *edges {
		printEdges(out, res.Calls)
	}
	if *cycles {
		printCycles(out, res.Calls)
	}
	return exitOK
}

func printGraphSummary(w io.Writer, res *p4c.Result) {
	_, _ = fmt.Fprintf(w, "%-14s %6s %6s\n", "RELATION", "NODES", "EDGES")
	for _, rel := range relations() {
		_, _ = fmt.Fprintf(w, "%-14s %6d %6d\n", rel, res.Calls.Graph(rel).Len(), res.Calls.EdgeCount(rel))
	}
	if len(res.Unreachable) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Unreachable:")
	for _, sym := range res.Unreachable {
		_, _ = fmt.Fprintf(w, "  %s\n", sym)
	}
}

func printEdges(w io.Writer, cg *graph.CallGraph) {
	for _, rel := range relations() {
		g := cg.Graph(rel)
		if cg.EdgeCount(rel) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s:\n", rel)
		for _, from := range g.Nodes() {
			for _, to := range g.Successors(from) {
				_, _ = fmt.Fprintf(w, "  %s -> %s\n", from, to)
			}
		}
	}
}

func printCycles(w io.Writer, cg *graph.CallGraph) {
	found := false
	for _, rel := range []graph.Relation{graph.RelControls, graph.RelActions} {
		for _, cycle := range cg.Graph(rel).FindCycles() {
			if !found {
				_, _ = fmt.Fprintln(w, "\nCycles:")
				found = true
			}
			names := make([]string, len(cycle))
			for i, sym := range cycle {
				names[i] = sym.String()
			}
			_, _ = fmt.Fprintf(w, "  %s: %s\n", rel, strings.Join(names, " -> "))
		}
	}
	if !found {
		_, _ = fmt.Fprintln(w, "\nNo cycles.")
	}
}
