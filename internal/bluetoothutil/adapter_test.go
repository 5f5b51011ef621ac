package bluetoothutil

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestIsBenignEnableError(t *testing.T) {
	tests := []struct {
		name string
		goos string
		err  error
		want bool
	}{
		{name: "nil", goos: "windows", err: nil, want: false},
		{name: "windows com already up", goos: "windows", err: errors.New("Incorrect function."), want: true},
		{name: "windows other", goos: "windows", err: errors.New("access denied"), want: false},
		{name: "linux incorrect function", goos: "linux", err: errors.New("Incorrect function."), want: false},
		{name: "linux already exists", goos: "linux", err: dbus.NewError("org.bluez.Error.AlreadyExists", nil), want: true},
		{name: "darwin", goos: "darwin", err: errors.New("Incorrect function."), want: false},
	}

	for _, tc := range tests {
		if got := isBenignEnableError(tc.goos, tc.err); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveAdapterNeverNil(t *testing.T) {
	for _, id := range []string{"", "   ", "hci1"} {
		if ResolveAdapter(id) == nil {
			t.Fatalf("ResolveAdapter(%q) returned nil", id)
		}
	}
}
