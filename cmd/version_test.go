package cmd

import "testing"

func TestResolveVersionPrefersBuildOverride(t *testing.T) {
	original := version
	version = "v1.2.3"
	defer func() { version = original }()

	if got := resolveVersion(); got != "v1.2.3" {
		t.Fatalf("expected build override, got %q", got)
	}
}

func TestResolveVersionNeverEmpty(t *testing.T) {
	original := version
	version = ""
	defer func() { version = original }()

	if got := resolveVersion(); got == "" {
		t.Fatalf("expected a non-empty version")
	}
}
