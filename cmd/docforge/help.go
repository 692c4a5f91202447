package main

import (
	"fmt"
	"io"
)

const usageText = `docforge - resilient document conversion pipeline

Usage:
  docforge convert [flags] [file-or-dir]   one-shot conversion (default command)
  docforge watch [flags]                   poll the input directory on an interval
  docforge daemon [flags]                  detached watch guarded by a pidfile
  docforge serve [flags]                   HTTP API only, jobs arrive over POST
  docforge check [flags]                   diagnose the host toolchain
  docforge help                            show this help

Common flags:
  -c, --config string     config file name or path (default: docforge.yaml)
  -i, --input string      input file or directory (default: input)
  -o, --output string     output directory (default: output)
  -f, --format string     output format: pdf, docx, html (default: pdf)
  -t, --template string   LaTeX template path
      --force             reconvert even when cached
  -w, --workers int       parallel workers (0 = auto)
      --timeout string    renderer timeout per invocation (default: 300s)
      --interval string   watch poll interval (default: 60s)
      --pid-file string   daemon pidfile path
      --listen string     HTTP listen address, enables the API
      --redis string      redis address for a shared job cache
      --json              machine-readable output where supported
  -q, --quiet             only show errors
  -v, --verbose           show debug output
      --version           print version and exit

Exit codes:
  0  all processed files succeeded, or no work was found
  1  setup failure (bad configuration, unwritable directories)
  2  at least one file failed to convert
  3  daemon failed to start (already running)

Environment:
  DOCFORGE_CONFIG, DOCFORGE_INPUT_DIR, DOCFORGE_OUTPUT_DIR,
  DOCFORGE_TEMPLATE, DOCFORGE_WORKERS, DOCFORGE_REDIS,
  PANDOC_TIMEOUT (seconds), SOURCE_DATE_EPOCH, ROD_BROWSER_BIN
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
