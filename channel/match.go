package channel

import (
	"strings"

	"github.com/ereader-ota/otactl/githubapi"
)

// FirstWithPrefix returns the first artifact, in list order, whose name starts
// with prefix. There is no tie-break: if several artifacts share the prefix the
// earliest listed one wins.
func FirstWithPrefix(artifacts []*githubapi.Artifact, prefix string) (*githubapi.Artifact, bool) {
	for _, artifact := range artifacts {
		if artifact != nil && strings.HasPrefix(artifact.Name, prefix) {
			return artifact, true
		}
	}
	return nil, false
}

func findAsset(assets []*githubapi.ReleaseAsset, name string) (*githubapi.ReleaseAsset, bool) {
	for _, asset := range assets {
		if asset != nil && asset.Name == name {
			return asset, true
		}
	}
	return nil, false
}

func findRun(runs []*githubapi.WorkflowRun, name string) (*githubapi.WorkflowRun, bool) {
	for _, run := range runs {
		if run != nil && run.Name == name {
			return run, true
		}
	}
	return nil, false
}
