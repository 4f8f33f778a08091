package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origV, origC, origD
	})
}

func TestGetBaseVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"plain", "1.2.3", "1.2.3"},
		{"with metadata", "0.3.0+42.abc1234", "0.3.0"},
		{"with prerelease", "1.0.0-rc.1", "1.0.0"},
		{"invalid", "not-a-version", "not-a-version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, "unknown", "unknown")
			assert.Equal(t, tt.expected, GetBaseVersion())
		})
	}
}

func TestGetFormattedVersion(t *testing.T) {
	withVersion(t, "0.3.0", "0123456789abcdef", "2025-10-01")
	assert.Equal(t, "AliadoDoc v0.3.0, commit 0123456, built 2025-10-01", GetFormattedVersion())

	withVersion(t, "0.3.0", "unknown", "unknown")
	assert.Equal(t, "AliadoDoc v0.3.0", GetFormattedVersion())
}

func TestGetInfo_Invalid(t *testing.T) {
	withVersion(t, "bogus", "unknown", "unknown")
	_, err := GetInfo()
	require.Error(t, err)
	assert.Contains(t, GetFormattedVersion(), "invalid version")
}

func TestGetDetailedVersion(t *testing.T) {
	withVersion(t, "1.0.0-beta.2", "abc", "today")
	detailed := GetDetailedVersion()
	assert.Contains(t, detailed, "AliadoDoc v1.0.0-beta.2")
	assert.Contains(t, detailed, "Pre-release: beta.2")
	assert.Contains(t, detailed, "Git Commit: abc")
}

func TestIsAtLeast(t *testing.T) {
	withVersion(t, "0.3.0", "unknown", "unknown")

	ok, err := IsAtLeast("0.2.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAtLeast("1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsAtLeast("???")
	assert.Error(t, err)
}
