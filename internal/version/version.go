// Package version provides build and version information for AliadoDoc.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the application
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetBaseVersion returns major.minor.patch without pre-release or build metadata.
func GetBaseVersion() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a one-line version string for banners.
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("AliadoDoc v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("AliadoDoc v%s", info.Version)}

	if info.GitCommit != "unknown" && info.GitCommit != "" {
		shortCommit := info.GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, fmt.Sprintf("commit %s", shortCommit))
	}

	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("built %s", info.BuildDate))
	}

	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns multi-line version information for the version command.
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("AliadoDoc v%s (error: %v)", Version, err)
	}

	lines := []string{
		fmt.Sprintf("AliadoDoc v%s", info.Version),
		fmt.Sprintf("Git Commit: %s", info.GitCommit),
		fmt.Sprintf("Build Date: %s", info.BuildDate),
		fmt.Sprintf("Go Version: %s", info.GoVersion),
		fmt.Sprintf("Platform: %s", info.Platform),
	}
	if pre := info.SemVer.Prerelease(); pre != "" {
		lines = append(lines, fmt.Sprintf("Pre-release: %s", pre))
	}

	return strings.Join(lines, "\n")
}

// IsAtLeast reports whether the running version satisfies ">= minimum".
func IsAtLeast(minimum string) (bool, error) {
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint '%s': %w", minimum, err)
	}
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return constraint.Check(sv), nil
}
