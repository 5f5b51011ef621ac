//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

type flockLock struct {
	name string
	path string
	file *os.File
}

func acquireRuntimeLock(name string) (RuntimeLock, error) {
	path, err := lockFilePath(name)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is built from the runtime dir and a sanitized name.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open runtime lock %s: %w", path, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := readHolderPID(file)
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, &AlreadyRunningError{Name: name, PID: holder}
		}

		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	if err := writeHolderPID(file); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, err
	}

	return &flockLock{name: name, path: path, file: file}, nil
}

func (l *flockLock) Name() string {
	return l.name
}

func (l *flockLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	_ = l.file.Truncate(0)
	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock %s: %w", l.path, unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", l.path, closeErr)
	}

	return nil
}

// lockFilePath prefers XDG_RUNTIME_DIR, which is per-user and cleared on boot.
func lockFilePath(name string) (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "camsync-"+strconv.Itoa(os.Getuid()))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime lock dir: %w", err)
	}

	return filepath.Join(dir, name+".lock"), nil
}

func writeHolderPID(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("truncate runtime lock: %w", err)
	}
	if _, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("write runtime lock pid: %w", err)
	}

	return nil
}

func readHolderPID(file *os.File) int {
	buf := make([]byte, 32)
	n, _ := file.ReadAt(buf, 0)
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}

	return pid
}
