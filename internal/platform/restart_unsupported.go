//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func respawnProcess(string, []string, []string) error {
	return fmt.Errorf("self restart unsupported on %s", runtime.GOOS)
}
