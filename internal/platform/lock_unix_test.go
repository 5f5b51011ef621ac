//go:build unix

package platform

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireRuntimeLockContention(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	appID := "camsync-test-" + strconv.Itoa(os.Getpid())

	first, err := AcquireRuntimeLock(appID, "hci0", "wlan0")
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}

	second, err := AcquireRuntimeLock(appID, "hci0", "wlan0")
	var running *AlreadyRunningError
	if !errors.As(err, &running) {
		t.Fatalf("expected AlreadyRunningError, got %v", err)
	}
	if second != nil {
		t.Fatalf("expected nil lock on contention")
	}
	if running.PID != os.Getpid() {
		t.Fatalf("expected holder pid %d, got %d", os.Getpid(), running.PID)
	}

	other, err := AcquireRuntimeLock(appID, "hci1", "wlan1")
	if err != nil {
		t.Fatalf("expected distinct scope not to contend: %v", err)
	}
	_ = other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	third, err := AcquireRuntimeLock(appID, "hci0", "wlan0")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := third.Release(); err != nil {
		t.Fatalf("release third: %v", err)
	}
	if err := third.Release(); err != nil {
		t.Fatalf("expected repeated release to be a no-op, got %v", err)
	}
}

func TestLockFilePathFallsBackToTemp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	path, err := lockFilePath("camsync")
	if err != nil {
		t.Fatalf("resolve lock path: %v", err)
	}
	if want := "camsync-" + strconv.Itoa(os.Getuid()); !strings.Contains(path, want) {
		t.Fatalf("expected %q in %q", want, path)
	}
	if !strings.HasSuffix(path, "camsync.lock") {
		t.Fatalf("expected lock file name, got %q", path)
	}
}
