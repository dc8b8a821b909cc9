package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

const (
	DefaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	jsonAccept     = "application/vnd.github+json"
	apiVersion     = "2022-11-28"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("incorrect request parameters")
)

// APIError is any non-2xx answer from the API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("GitHub API error: failed to %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

type RESTClient struct {
	repoEndpoint url.URL
	token        Token
	userAgent    string
	client       http.Client
	// downloadClient has no overall timeout; each range request is bounded
	// by its context.
	downloadClient http.Client
	log            *zerolog.Logger
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient builds a client for one owner/name repository.
func NewRESTClient(baseURL, repository string, token Token, userAgent string, log *zerolog.Logger) (*RESTClient, error) {
	if token.IsEmpty() {
		return nil, ErrNoToken
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, errors.Errorf("repository must be in owner/name form, got %q", repository)
	}
	repoEndpoint, err := url.Parse(fmt.Sprintf("%s/repos/%s/%s", baseURL, url.PathEscape(parts[0]), url.PathEscape(parts[1])))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create repository endpoint")
	}
	httpTransport := http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   defaultTimeout,
		ResponseHeaderTimeout: defaultTimeout,
	}
	if err := http2.ConfigureTransport(&httpTransport); err != nil {
		return nil, errors.Wrap(err, "failed to configure HTTP/2 transport")
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &RESTClient{
		repoEndpoint: *repoEndpoint,
		token:        token,
		userAgent:    userAgent,
		client: http.Client{
			Transport: &httpTransport,
			Timeout:   defaultTimeout,
		},
		downloadClient: http.Client{
			Transport: &httpTransport,
		},
		log: log,
	}, nil
}

func (r *RESTClient) endpoint(elem ...string) url.URL {
	endpoint := r.repoEndpoint
	if len(elem) > 0 {
		endpoint.Path = endpoint.Path + "/" + strings.Join(elem, "/")
	}
	return endpoint
}

func (r *RESTClient) newRequest(ctx context.Context, method, target, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create %s request", method)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Authorization", r.token.authorization())
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req, nil
}

func (r *RESTClient) sendRequest(ctx context.Context, method string, endpoint url.URL) (*http.Response, error) {
	req, err := r.newRequest(ctx, method, endpoint.String(), jsonAccept)
	if err != nil {
		return nil, err
	}
	r.log.Debug().Str("method", method).Str("url", endpoint.String()).Msg("Sending API request")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	r.log.Debug().Int("status", resp.StatusCode).Str("url", endpoint.String()).Msg("API response")
	return resp, nil
}

// getJSON issues a GET and decodes a 200 response into data.
func (r *RESTClient) getJSON(ctx context.Context, op string, endpoint url.URL, data interface{}) error {
	resp, err := r.sendRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return errors.Wrap(err, "REST request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return r.statusCodeToError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", op)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

func (r *RESTClient) statusCodeToError(op string, resp *http.Response) error {
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var body errorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body) == nil {
			apiErr.Message = body.Message
		}
	}
	r.log.Error().Str("op", op).Int("status", resp.StatusCode).Msg("API call failed")
	return apiErr
}
