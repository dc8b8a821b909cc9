package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		resolver Resolver
		expected Target
	}{
		{
			name:     "test sandbox",
			resolver: Resolver{Environment: Test, SandboxDir: "/sandbox"},
			expected: Target{Environment: Test, Path: "/sandbox/test-kobo-deployment/KoboRoot.tgz", CreateParents: true},
		},
		{
			name:     "test default sandbox",
			resolver: Resolver{Environment: Test},
			expected: Target{Environment: Test, Path: filepath.Join(os.TempDir(), "test-kobo-deployment", "KoboRoot.tgz"), CreateParents: true},
		},
		{
			name:     "emulator",
			resolver: Resolver{Environment: Emulator, CardRoot: "/ignored"},
			expected: Target{Environment: Emulator, Path: "/tmp/.kobo/KoboRoot.tgz", CreateParents: true},
		},
		{
			name:     "production default card",
			resolver: Resolver{Environment: Production},
			expected: Target{Environment: Production, Path: "/mnt/onboard/.kobo/KoboRoot.tgz"},
		},
		{
			name:     "production custom card",
			resolver: Resolver{Environment: Production, CardRoot: "/media/card"},
			expected: Target{Environment: Production, Path: "/media/card/.kobo/KoboRoot.tgz"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := tt.resolver.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, target)
		})
	}

	_, err := Resolver{Environment: "staging"}.Resolve()
	assert.Error(t, err)
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment(" Emulator ")
	require.NoError(t, err)
	assert.Equal(t, Emulator, env)

	env, err = ParseEnvironment("")
	require.NoError(t, err)
	assert.Equal(t, Production, env)

	_, err = ParseEnvironment("desktop")
	assert.Error(t, err)
}

func TestWriteCreatesParentsOutsideProduction(t *testing.T) {
	target, err := Resolver{Environment: Test, SandboxDir: t.TempDir()}.Resolve()
	require.NoError(t, err)

	path, err := NewWriter(nil).Write(target, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, target.Path, path)

	path, err = NewWriter(nil).Write(target, []byte("second"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteProductionRequiresMount(t *testing.T) {
	card := filepath.Join(t.TempDir(), "onboard")
	target, err := Resolver{Environment: Production, CardRoot: card}.Resolve()
	require.NoError(t, err)

	_, err = NewWriter(nil).Write(target, []byte("payload"))
	var deployErr *DeploymentError
	require.True(t, errors.As(err, &deployErr))
	_, statErr := os.Stat(card)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, os.MkdirAll(filepath.Join(card, ".kobo"), 0755))
	path, err := NewWriter(nil).Write(target, []byte("payload"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}
