package main

import (
	"fmt"
)

const configUsage = `p4convert config - Print the effective configuration

Usage:
  p4convert config

The configuration is read from -c FILE, else from the nearest
p4convert.toml in the working directory or its parents, else the
built-in defaults are used.
`

func (c *cli) cmdConfig(args []string) int {
	if c.HelpFlag {
		_, _ = fmt.Fprint(c.stdout, configUsage)
		return exitOK
	}
	if len(args) > 0 {
		c.printError("config takes no arguments")
		_, _ = fmt.Fprint(c.stderr, configUsage)
		return exitError
	}

	cfg, err := c.loadConfig()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if cfg.Path != "" {
		_, _ = fmt.Fprintf(c.stdout, "# %s\n", cfg.Path)
	} else {
		_, _ = fmt.Fprintln(c.stdout, "# defaults")
	}
	if err := cfg.Encode(c.stdout); err != nil {
		c.printError("%v", err)
		return exitError
	}
	return exitOK
}
