//go:build windows

package main

import "errors"

func daemonChild() bool { return false }

// spawnDaemon is unsupported on Windows; run watch mode under a service
// manager instead.
func spawnDaemon() (int, error) {
	return 0, errors.New("daemon mode is not supported on windows, use watch under a service manager")
}
