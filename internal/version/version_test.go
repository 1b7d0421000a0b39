package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "  1.2.3 "
	if got := Plain(); got != "1.2.3" {
		t.Fatalf("Plain() = %q", got)
	}
	Version = ""
	if got := Plain(); got != "dev" {
		t.Fatalf("Plain() = %q, want dev", got)
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	for in, want := range map[string]string{
		"1.2.3":                "1.2.3",
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"nightly":              "nightly",
	} {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColoredPaintsNumbers(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = false

	Version = "1.2.3-dev"
	got := Colored()
	if got == "1.2.3-dev" {
		t.Fatalf("expected escape codes in %q", got)
	}
	if want := patchColor.Sprint("3") + "-dev"; len(got) < len(want) || got[len(got)-len(want):] != want {
		t.Fatalf("Colored() = %q, want suffix %q", got, want)
	}
}
