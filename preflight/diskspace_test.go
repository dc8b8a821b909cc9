package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedStat(bytes uint64) StatFunc {
	return func(string) (uint64, error) { return bytes, nil }
}

func TestCheckSufficientTempDir(t *testing.T) {
	checker := NewChecker(nil)
	// a fresh temp dir on any CI machine has more than 100MB free
	assert.NoError(t, checker.Check(t.TempDir()))
}

func TestCheckThreshold(t *testing.T) {
	tests := []struct {
		name      string
		available uint64
		wantErr   bool
	}{
		{name: "plenty", available: 4096 * mebibyte},
		{name: "exactly threshold", available: 100 * mebibyte},
		{name: "just below", available: 100*mebibyte - 1, wantErr: true},
		{name: "empty", available: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &Checker{RequiredMB: DefaultRequiredMB, Stat: fixedStat(tt.available)}
			err := checker.Check("/tmp")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var spaceErr *InsufficientSpaceError
			require.True(t, errors.As(err, &spaceErr))
			assert.Equal(t, tt.available/mebibyte, spaceErr.AvailableMB)
			assert.Equal(t, uint64(DefaultRequiredMB), spaceErr.RequiredMB)
		})
	}
}

func TestCheckStatFailure(t *testing.T) {
	checker := NewChecker(nil)
	err := checker.Check(filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.Error(t, err)
	var spaceErr *InsufficientSpaceError
	assert.False(t, errors.As(err, &spaceErr))
	var statErr *StatError
	require.True(t, errors.As(err, &statErr))
	assert.True(t, os.IsNotExist(statErr.Err))
}

func TestInsufficientSpaceMessage(t *testing.T) {
	err := &InsufficientSpaceError{Path: "/tmp", AvailableMB: 12, RequiredMB: 100}
	assert.Equal(t, "insufficient disk space in /tmp: need 100MB, have 12MB", err.Error())
}
