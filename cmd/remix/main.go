// Command remix changes the tempo, pitch and volume of audio files.
//
// Usage:
//
//	remix [-v] [-version] <command> [flags]
//
// Examples:
//
//	remix process -in song.mp3 -out faster.mp3 -tempo 1.25
//	remix process -in take.wav -out low.wav -pitch -3st -gain -2
//	remix preview -in song.mp3 -preset slow.yaml
//	remix info song.mp3
//	remix tone -out a440.wav -freq 440 -seconds 2
//	remix preset -out slow.yaml -tempo 0.8 -pitch -1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", cmdName, err)
		}
		stop()
		os.Exit(1)
	}
}
