package githubapi

import "context"

type Repository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

type Release struct {
	TagName string          `json:"tag_name"`
	Name    string          `json:"name"`
	Assets  []*ReleaseAsset `json:"assets"`
}

type ReleaseAsset struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               uint64 `json:"size"`
}

func (r *RESTClient) GetRepository(ctx context.Context) (*Repository, error) {
	var repo Repository
	if err := r.getJSON(ctx, "fetch repository metadata", r.endpoint(), &repo); err != nil {
		return nil, err
	}
	r.log.Debug().Str("defaultBranch", repo.DefaultBranch).Msg("Resolved default branch")
	return &repo, nil
}

func (r *RESTClient) GetLatestRelease(ctx context.Context) (*Release, error) {
	var release Release
	if err := r.getJSON(ctx, "fetch latest release", r.endpoint("releases", "latest"), &release); err != nil {
		return nil, err
	}
	r.log.Debug().Str("tag", release.TagName).Int("assets", len(release.Assets)).Msg("Found latest release")
	return &release, nil
}
