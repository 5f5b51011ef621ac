package app

import "testing"

func TestBuildVersion(t *testing.T) {
	original := Version
	t.Cleanup(func() {
		Version = original
	})

	Version = " 1.2.3 "
	if got := BuildVersion(); got != "1.2.3" {
		t.Fatalf("BuildVersion() = %q, want %q", got, "1.2.3")
	}
	Version = ""
	if got := BuildVersion(); got == "" {
		t.Fatalf("expected a non-empty fallback version")
	}
}

func TestBuildDateYMD(t *testing.T) {
	original := BuildDate
	t.Cleanup(func() {
		BuildDate = original
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "rfc3339", in: "2026-03-01T10:20:30Z", want: "2026-03-01"},
		{name: "date prefix", in: "2026-03-01_build7", want: "2026-03-01"},
		{name: "raw fallback", in: "nightly", want: "nightly"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			BuildDate = tc.in
			if got := BuildDateYMD(); got != tc.want {
				t.Fatalf("BuildDateYMD() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildVersionWithDate(t *testing.T) {
	origVersion, origDate := Version, BuildDate
	t.Cleanup(func() {
		Version, BuildDate = origVersion, origDate
	})

	Version, BuildDate = "1.0.0", "2026-03-01T00:00:00Z"
	if got := BuildVersionWithDate(); got != "1.0.0 (2026-03-01)" {
		t.Fatalf("unexpected version string %q", got)
	}
}
