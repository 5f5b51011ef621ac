//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func acquireRuntimeLock(string) (RuntimeLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrLockUnsupported, runtime.GOOS)
}
