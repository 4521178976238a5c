package version

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

func TestPlainIsSemver(t *testing.T) {
	v, err := semver.StrictNewVersion(Plain)
	if err != nil {
		t.Fatalf("Plain = %q is not a strict semver: %v", Plain, err)
	}
	if v.Prerelease() != "dev" {
		t.Errorf("prerelease = %q, want dev", v.Prerelease())
	}
}

func TestVersionMatchesPlainWithoutColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	got := versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(patch) + pre
	if got != Plain {
		t.Errorf("uncoloured banner = %q, want %q", got, Plain)
	}
}

func TestOptionalFieldsOverride(t *testing.T) {
	tests := []struct {
		name string
		ptr  *string
		val  string
	}{
		{"commit", &GitCommit, "abc123def456"},
		{"message", &GitMessage, "fix range bounds"},
		{"date", &BuildDate, "2024-01-15T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := *tt.ptr
			defer func() { *tt.ptr = orig }()
			*tt.ptr = tt.val
			if *tt.ptr != tt.val {
				t.Errorf("got %q, want %q", *tt.ptr, tt.val)
			}
		})
	}
}
