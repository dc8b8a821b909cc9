package githubapi

import (
	"net/url"
	"strconv"
)

// RunFilter narrows a workflow run listing.
type RunFilter struct {
	queryParams url.Values
}

func NewRunFilter() *RunFilter {
	return &RunFilter{
		queryParams: url.Values{},
	}
}

func (f *RunFilter) ByHeadSHA(sha string) {
	f.queryParams.Set("head_sha", sha)
}

func (f *RunFilter) ByEvent(event string) {
	f.queryParams.Set("event", event)
}

func (f *RunFilter) ByBranch(branch string) {
	f.queryParams.Set("branch", branch)
}

func (f *RunFilter) ByStatus(status string) {
	f.queryParams.Set("status", status)
}

func (f *RunFilter) MaxFetchSize(max uint) {
	f.queryParams.Set("per_page", strconv.Itoa(int(max)))
}

func (f *RunFilter) encode() string {
	if f == nil {
		return ""
	}
	return f.queryParams.Encode()
}
