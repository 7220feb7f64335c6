package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/remix"
)

var cmdPreset = &command{
	Name:        "preset",
	Description: "write effect settings to a YAML preset",
	Run: func(ctx context.Context, a *app, argv []string) error {
		flags := flag.NewFlagSet("remix preset", flag.ContinueOnError)
		flags.SetOutput(a.errOut)
		out := flags.String("out", "", "preset `file` to write (default: print to stdout)")
		yes := flags.Bool("y", false, "write without asking")
		effects := addEffectFlags(flags)
		if err := flags.Parse(argv); err != nil {
			return err
		}

		params, err := effects.params(flags)
		if err != nil {
			return err
		}
		next, err := remix.MarshalPreset(params.Normalize())
		if err != nil {
			return err
		}

		if *out == "" {
			_, err := a.out.Write(next)
			return err
		}

		current, err := os.ReadFile(*out)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("%w: read %s: %w", codec.ErrIO, *out, err)
		case bytes.Equal(current, next):
			fmt.Fprintln(a.out, "No changes to apply.")
			return nil
		default:
			fmt.Fprintf(a.out, "The following changes will be applied:\n%s\n", presetDiff(string(current), string(next)))
			if !*yes && !a.confirm("Apply these changes?", true) {
				fmt.Fprintln(a.out, "Changes not applied.")
				return nil
			}
		}

		if err := os.WriteFile(*out, next, 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %w", codec.ErrIO, *out, err)
		}
		a.logger.Debug("preset written", "path", *out, "params", params.String())

		return nil
	},
}

func presetDiff(current, next string) string {
	dmp := diffmatchpatch.New()
	return dmp.DiffPrettyText(dmp.DiffMain(current, next, false))
}
