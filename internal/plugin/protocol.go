package plugin

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"nucore/internal/diag"
	"nucore/internal/source"
)

const (
	// ProtocolName identifies the wire protocol in the hello message.
	ProtocolName = "nucore-plugin"
	// ProtocolVersion is the version this build speaks.
	ProtocolVersion = "0.3.0"
)

// Feature names an optional protocol capability announced in hello.
type Feature string

const (
	FeatureCustomValues Feature = "custom-values"
	FeatureMsgpack      Feature = "msgpack"
	FeatureJSON         Feature = "json"
)

// ProtocolInfo is exchanged once, first, in each direction.
type ProtocolInfo struct {
	Protocol string    `json:"protocol" msgpack:"protocol"`
	Version  string    `json:"version" msgpack:"version"`
	Features []Feature `json:"features,omitempty" msgpack:"features,omitempty"`
}

// DefaultProtocolInfo describes this build.
func DefaultProtocolInfo() ProtocolInfo {
	return ProtocolInfo{
		Protocol: ProtocolName,
		Version:  ProtocolVersion,
		Features: []Feature{FeatureCustomValues, FeatureMsgpack, FeatureJSON},
	}
}

// Supports reports whether f was announced.
func (p ProtocolInfo) Supports(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// CompatibleWith reports whether two peers can talk. Protocol names must
// match and versions must share a major version; before 1.0 the minor
// version must match as well. An unparsable version is an error.
func (p ProtocolInfo) CompatibleWith(other ProtocolInfo) (bool, error) {
	if p.Protocol != other.Protocol {
		return false, nil
	}
	a, err := semver.NewVersion(p.Version)
	if err != nil {
		return false, fmt.Errorf("protocol version %q: %w", p.Version, err)
	}
	b, err := semver.NewVersion(other.Version)
	if err != nil {
		return false, fmt.Errorf("protocol version %q: %w", other.Version, err)
	}
	return versionsCompatible(a, b), nil
}

func versionsCompatible(a, b *semver.Version) bool {
	if a.Major() != b.Major() {
		return false
	}
	if a.Major() == 0 {
		return a.Minor() == b.Minor()
	}
	return true
}

// checkVersion validates an envelope or hello version against ours.
func (p ProtocolInfo) checkVersion(version string, sp source.Span) error {
	theirs, err := semver.NewVersion(version)
	if err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("invalid protocol version %q", version))
		d.Err = err
		return d
	}
	ours, err := semver.NewVersion(p.Version)
	if err != nil {
		return fmt.Errorf("own protocol version %q: %w", p.Version, err)
	}
	if !versionsCompatible(ours, theirs) {
		return diag.Plugin(diag.PluginIncompatibleVersion, sp,
			fmt.Sprintf("plugin is compiled for version %s, which is not compatible with version %s", theirs, ours))
	}
	return nil
}
