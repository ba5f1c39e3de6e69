package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/chanombude/twitter-go-client/internal/common"
	"github.com/chanombude/twitter-go-client/internal/log"
	"github.com/chanombude/twitter-go-client/internal/metrics"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenSource yields the current access token, empty when anonymous.
type TokenSource interface {
	Token() string
}

// Refresher exchanges the out-of-band credential for a fresh access token.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Client is the REST boundary. Every request is decorated with the bearer
// token; a 401 triggers one refresh-and-replay, never more.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	refresher Refresher

	log     log.Logger
	metrics *metrics.Metrics
}

func NewClient(baseURL string, httpClient *http.Client, logger log.Logger, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
		metrics: m,
	}
}

// SetAuth wires the session layer in after construction; the session layer
// itself needs the client for its endpoints.
func (c *Client) SetAuth(tokens TokenSource, refresher Refresher) {
	c.tokens = tokens
	c.refresher = refresher
}

type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	out         any
	noAuth      bool
	noRetry     bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	token := ""
	if !cl.noAuth && c.tokens != nil {
		token = c.tokens.Token()
	}

	status, body, err := c.roundTrip(ctx, cl, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !cl.noRetry && c.refresher != nil {
		refreshed, refreshErr := c.refresher.Refresh(ctx)
		if refreshErr != nil {
			// Refresh failed: surface the original authorization error.
			return c.decodeError(cl.path, status, body)
		}

		c.metrics.HTTPRetry()
		c.log.WithField("path", cl.path).Debug("replaying request with refreshed token")

		status, body, err = c.roundTrip(ctx, cl, refreshed)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return c.decodeError(cl.path, status, body)
	}

	if cl.out == nil {
		return nil
	}

	if err = json.Unmarshal(body, cl.out); err != nil {
		return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call, token string) (int, []byte, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		reader = bytes.NewReader(cl.body)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, reader)
	if err != nil {
		return 0, nil, err
	}

	contentType := cl.contentType
	if contentType == "" && cl.body != nil {
		contentType = contentTypeJSON
	}

	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	req.Header.Set(headerRequestID, uuid.NewString())

	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Debug("close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) decodeError(path string, status int, body []byte) error {
	apiErr := &common.APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Status == 0 {
		apiErr = &common.APIError{
			Status:    status,
			ErrorText: http.StatusText(status),
			Path:      path,
		}
	}

	return apiErr
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("size", fmt.Sprintf("%d", size))

	return q
}
