// Package platform holds OS-specific process helpers: the runtime lock that
// keeps a second instance off the radio and the network interface, and
// process self-restart.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyRunning means another process holds the runtime lock.
var ErrAlreadyRunning = errors.New("another instance is running")

// ErrLockUnsupported means the platform has no lock backend.
var ErrLockUnsupported = errors.New("runtime lock unsupported")

// AlreadyRunningError carries the holder's PID when it could be read.
type AlreadyRunningError struct {
	Name string
	PID  int
}

func (e *AlreadyRunningError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("%s: %s (pid %d)", ErrAlreadyRunning, e.Name, e.PID)
	}

	return fmt.Sprintf("%s: %s", ErrAlreadyRunning, e.Name)
}

func (e *AlreadyRunningError) Unwrap() error {
	return ErrAlreadyRunning
}

// RuntimeLock is held for as long as the process owns the radio and station.
type RuntimeLock interface {
	Name() string
	Release() error
}

// AcquireRuntimeLock takes the lock named after appID and the hardware scope
// (adapter, interface). Distinct scopes do not contend.
func AcquireRuntimeLock(appID string, scope ...string) (RuntimeLock, error) {
	return acquireRuntimeLock(LockName(appID, scope...))
}

// LockName builds a filesystem and object-namespace safe lock name.
func LockName(appID string, scope ...string) string {
	parts := []string{sanitizeLockPart(appID, "app")}
	for _, s := range scope {
		if part := sanitizeLockPart(s, ""); part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, "-")
}

func sanitizeLockPart(raw, fallback string) string {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	part := strings.Trim(b.String(), "_.")
	if part == "" {
		return fallback
	}

	return part
}
