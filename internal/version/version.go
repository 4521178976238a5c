package version

import "github.com/fatih/color"

// Version information for the nucore CLI.
// These variables can be overridden at build time via -ldflags.

const (
	major = "0"
	minor = "1"
	patch = "0"
	pre   = "-dev"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI, coloured for the banner.
	Version = versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(patch) + pre

	// Plain is Version without colour escapes, for machine output.
	Plain = major + "." + minor + "." + patch + pre

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)
