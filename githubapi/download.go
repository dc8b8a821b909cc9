package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const binaryAccept = "application/octet-stream"

// FetchRange downloads bytes [start, end] of target. The whole body is
// buffered before returning so a failed read never yields partial data.
// Redirects to storage hosts are followed; the credential is not forwarded
// to a different host.
func (r *RESTClient) FetchRange(ctx context.Context, target string, start, end uint64) ([]byte, error) {
	if end < start {
		return nil, errors.Errorf("invalid range %d-%d", start, end)
	}
	req, err := r.newRequest(ctx, http.MethodGet, target, binaryAccept)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := r.downloadClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "chunk request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return nil, r.statusCodeToError("download chunk", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chunk body")
	}
	return data, nil
}
