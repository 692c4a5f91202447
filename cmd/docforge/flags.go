package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// ioFlags holds input/output selection flags.
type ioFlags struct {
	input    string
	output   string
	format   string
	template string
	force    bool
	workers  int
	timeout  string
}

// serviceFlags holds long-running mode flags.
type serviceFlags struct {
	interval string
	pidFile  string
	listen   string
	redis    string
}

// cliFlags holds all parsed flags for one invocation.
type cliFlags struct {
	common  commonFlags
	io      ioFlags
	service serviceFlags
	version bool
	jsonOut bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addIOFlags adds input/output flags to a FlagSet.
func addIOFlags(fs *flag.FlagSet, f *ioFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "input file or directory")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.format, "format", "f", "", "output format: pdf, docx, html")
	fs.StringVarP(&f.template, "template", "t", "", "LaTeX template name or path")
	fs.BoolVar(&f.force, "force", false, "reconvert even when cached")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.timeout, "timeout", "", "per-invocation renderer timeout (e.g. 300s, 5m)")
}

// addServiceFlags adds watch/daemon/serve flags to a FlagSet.
func addServiceFlags(fs *flag.FlagSet, f *serviceFlags) {
	fs.StringVar(&f.interval, "interval", "", "watch poll interval (e.g. 60s)")
	fs.StringVar(&f.pidFile, "pid-file", "", "daemon pidfile path")
	fs.StringVar(&f.listen, "listen", "", "HTTP listen address (e.g. :8080)")
	fs.StringVar(&f.redis, "redis", "", "redis address for a shared job cache")
}

// parseFlags parses args (excluding the command word) and returns the
// flags plus remaining positionals.
func parseFlags(command string, args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	f := &cliFlags{}

	addCommonFlags(fs, &f.common)
	addIOFlags(fs, &f.io)
	addServiceFlags(fs, &f.service)
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	fs.BoolVar(&f.jsonOut, "json", false, "machine-readable output where supported")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}
	return f, fs.Args(), nil
}
