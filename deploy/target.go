// Package deploy resolves and writes the installation path of a payload.
package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Environment string

const (
	Test       Environment = "test"
	Emulator   Environment = "emulator"
	Production Environment = "production"
)

const (
	PayloadName     = "KoboRoot.tgz"
	DefaultCardRoot = "/mnt/onboard"

	sandboxSubdir = "test-kobo-deployment"
	emulatorDir   = "/tmp/.kobo"
	deviceSubdir  = ".kobo"
)

func ParseEnvironment(s string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case Test, Emulator, Production:
		return env, nil
	case "":
		return Production, nil
	default:
		return "", fmt.Errorf("unknown deployment environment %q, expected one of test, emulator, production", s)
	}
}

// Target is the single file a deployment writes.
type Target struct {
	Environment Environment
	Path        string
	// CreateParents is false in production, where the storage mount must
	// already exist.
	CreateParents bool
}

type Resolver struct {
	Environment Environment
	CardRoot    string
	// SandboxDir replaces the system temp dir for the test environment.
	SandboxDir string
}

// Resolve derives the target from the current settings. It is evaluated on
// every deployment.
func (r Resolver) Resolve() (Target, error) {
	switch r.Environment {
	case Test:
		root := r.SandboxDir
		if root == "" {
			root = os.TempDir()
		}
		return Target{
			Environment:   Test,
			Path:          filepath.Join(root, sandboxSubdir, PayloadName),
			CreateParents: true,
		}, nil
	case Emulator:
		return Target{
			Environment:   Emulator,
			Path:          filepath.Join(emulatorDir, PayloadName),
			CreateParents: true,
		}, nil
	case Production, "":
		root := r.CardRoot
		if root == "" {
			root = DefaultCardRoot
		}
		return Target{
			Environment: Production,
			Path:        filepath.Join(root, deviceSubdir, PayloadName),
		}, nil
	default:
		return Target{}, fmt.Errorf("unknown deployment environment %q", r.Environment)
	}
}
