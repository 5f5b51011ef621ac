//go:build windows

package platform

import (
	"os"
	"os/exec"
)

// respawnProcess starts a detached copy and exits; Windows has no exec(2).
func respawnProcess(exe string, args, env []string) error {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	// #nosec G204 -- re-executes the current binary with its own arguments.
	cmd := exec.Command(exe, rest...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	os.Exit(0)

	return nil
}
