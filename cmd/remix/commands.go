package main

import (
	"context"
	"fmt"
	"io"
	"log"
)

type commander struct {
	cmdNames             []string
	dispatch             map[string]*command
	maxSubcommandNameLen int
}

func (co *commander) register(cmds ...*command) {
	for _, c := range cmds {
		n := c.Name
		if co.dispatch == nil {
			co.dispatch = map[string]*command{}
		}
		if _, ok := co.dispatch[n]; ok {
			log.Fatalf("subcommand %q already registered", n)
		}
		co.dispatch[n] = c
		co.cmdNames = append(co.cmdNames, n)
		co.maxSubcommandNameLen = max(co.maxSubcommandNameLen, len(n))
	}
}

var cmder = &commander{}

func init() {
	cmder.register(
		cmdProcess,
		cmdPreview,
		cmdInfo,
		cmdTone,
		cmdPreset,
	)
}

func formatCommands(out io.Writer) {
	format := fmt.Sprintf("  %%-%ds  %%s\n", cmder.maxSubcommandNameLen)
	for _, n := range cmder.cmdNames {
		c := cmder.dispatch[n]
		fmt.Fprintf(out, format, c.Name, c.Description)
	}
}

type command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, a *app, argv []string) error
}
