package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// knownCommands maps command words to handlers needing a signal-aware
// context; check and help are handled before signal setup.
var knownCommands = map[string]bool{
	"convert": true,
	"watch":   true,
	"daemon":  true,
	"serve":   true,
	"check":   true,
	"help":    true,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := "convert"
	if len(args) > 0 && knownCommands[args[0]] {
		command = args[0]
		args = args[1:]
	}

	if command == "help" {
		printUsage(os.Stdout)
		return ExitSuccess
	}

	flags, positional, err := parseFlags(command, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitSetup
	}
	if flags.version {
		fmt.Fprintf(os.Stdout, "docforge %s\n", Version)
		return ExitSuccess
	}

	s, err := resolveSettings(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitSetup
	}

	logger := newLogger(s)

	// GOMAXPROCS honors container CPU limits; failures fall back to the
	// runtime default.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, v ...interface{}) {
		logger.Debug(fmt.Sprintf(format, v...))
	}))

	if command == "check" {
		return runCheckCmd(s, os.Stdout)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch command {
	case "watch":
		return runWatch(ctx, s, logger)
	case "daemon":
		return runDaemon(ctx, s, logger)
	case "serve":
		return runServe(ctx, s, logger)
	default:
		return runConvert(ctx, s, positional, logger)
	}
}
