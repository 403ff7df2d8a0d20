// Package analysis speaks the pipeline analysis wire contract: a client that
// submits graphs to POST /pipelines/parse and a reference service that
// answers it.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/meikuraledutech/pipeline"
)

// ParsePath is the analysis endpoint path.
const ParsePath = "/pipelines/parse"

// DefaultEndpoint is where the analysis service listens in local setups.
const DefaultEndpoint = "http://localhost:8000"

// Client calls the analysis service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ pipeline.Analyzer = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// NewClient creates a Client for the service rooted at endpoint,
// e.g. "http://localhost:8000".
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireResult mirrors pipeline.Result with pointers so absent fields can be
// told apart from zero values.
type wireResult struct {
	NumNodes *int  `json:"num_nodes"`
	NumEdges *int  `json:"num_edges"`
	IsDAG    *bool `json:"is_dag"`
}

// Parse posts g and decodes the analysis result.
// A non-2xx answer is returned as *pipeline.StatusError; an unreadable or
// incomplete body wraps pipeline.ErrMalformedResponse.
func (c *Client) Parse(ctx context.Context, g pipeline.Graph) (*pipeline.Result, error) {
	if g.Nodes == nil {
		g.Nodes = []pipeline.Node{}
	}
	if g.Edges == nil {
		g.Edges = []pipeline.Edge{}
	}
	body, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("analysis: encode graph: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+ParsePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analysis: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &pipeline.StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("analysis: read response: %w", err)
	}
	return decodeResult(data)
}

func decodeResult(data []byte) (*pipeline.Result, error) {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrMalformedResponse, err)
	}
	switch {
	case w.NumNodes == nil:
		return nil, fmt.Errorf("%w: missing num_nodes", pipeline.ErrMalformedResponse)
	case w.NumEdges == nil:
		return nil, fmt.Errorf("%w: missing num_edges", pipeline.ErrMalformedResponse)
	case w.IsDAG == nil:
		return nil, fmt.Errorf("%w: missing is_dag", pipeline.ErrMalformedResponse)
	case *w.NumNodes < 0 || *w.NumEdges < 0:
		return nil, fmt.Errorf("%w: negative count", pipeline.ErrMalformedResponse)
	}
	return &pipeline.Result{NumNodes: *w.NumNodes, NumEdges: *w.NumEdges, IsDAG: *w.IsDAG}, nil
}
