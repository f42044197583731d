package cmd

import (
	"fmt"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"

	"github.com/towerops/towerctl/pkg/api"
)

func TestSetVersionInfo(t *testing.T) {
	// Save original values
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2024-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
		{
			name:      "set empty values",
			version:   "",
			commit:    "",
			buildDate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			name: "cmdError carries its own code",
			err:  exitError(foundry.ExitFileNotFound, "missing", nil),
			code: foundry.ExitFileNotFound,
		},
		{
			name: "wrapped cmdError still resolves",
			err:  fmt.Errorf("outer: %w", exitError(foundry.ExitInvalidArgument, "bad flag", nil)),
			code: foundry.ExitInvalidArgument,
		},
		{
			name: "validation failures are invalid arguments",
			err:  fmt.Errorf("%w: missing field", api.ErrValidation),
			code: foundry.ExitInvalidArgument,
		},
		{
			name: "server errors point at the external service",
			err:  fmt.Errorf("%w: boom", api.ErrServer),
			code: foundry.ExitExternalServiceUnavailable,
		},
		{
			name: "anything else is a generic failure",
			err:  fmt.Errorf("unclassified"),
			code: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCodeFor(tt.err))
		})
	}
}
