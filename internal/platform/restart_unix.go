//go:build unix

package platform

import "syscall"

// respawnProcess replaces the process image; the PID is kept.
func respawnProcess(exe string, args, env []string) error {
	// #nosec G204 -- re-executes the current binary with its own arguments.
	return syscall.Exec(exe, args, env)
}
