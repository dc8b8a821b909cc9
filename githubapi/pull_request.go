package githubapi

import (
	"context"
	"strconv"
)

type PullRequest struct {
	Number uint32 `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Head   Ref    `json:"head"`
}

type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

func (r *RESTClient) GetPullRequest(ctx context.Context, number uint32) (*PullRequest, error) {
	endpoint := r.endpoint("pulls", strconv.FormatUint(uint64(number), 10))
	var pr PullRequest
	if err := r.getJSON(ctx, "get pull request", endpoint, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}
