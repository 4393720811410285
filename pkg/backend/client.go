// Package backend is the HTTP client for the LLM collaborator that
// generates, expands, and merges graph node content. Every call takes
// a context and returns the decoded, validated response; callers own
// all fallback behavior except the static suggestion sets exposed
// here.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/prismdocs/atlas/pkg/logging"
	"github.com/prismdocs/atlas/pkg/metrics"
)

// DefaultTimeout bounds non-streaming backend calls. Generation runs
// through an LLM, so this is deliberately generous.
const DefaultTimeout = 90 * time.Second

// RequestError describes a failed backend call
type RequestError struct {
	Op     string
	Status int
	Cause  error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Cause)
}

func (e *RequestError) Unwrap() error { return e.Cause }

// Config configures a backend client
type Config struct {
	BaseURL string
	// Token, when set, is attached as a bearer credential
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// Client talks to the LLM backend over HTTP+JSON
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	logger   logging.Logger
	metrics  *metrics.Registry
	validate *validator.Validate
}

// New creates a backend client
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		http:     httpClient,
		logger:   logger.With(logging.Component("backend")),
		metrics:  reg,
		validate: validator.New(),
	}
}

// GenerateGraph requests a full node set for a query
func (c *Client) GenerateGraph(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "generate", "/graph/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExpandNode requests child nodes for an existing node
func (c *Client) ExpandNode(ctx context.Context, req ExpandRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "expand", "/graph/expand", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SuggestExpand requests expansion directives for a node
func (c *Client) SuggestExpand(ctx context.Context, req SuggestExpandRequest) (*SuggestResponse, error) {
	var resp SuggestResponse
	if err := c.post(ctx, "expand_suggest", "/graph/expand/suggest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MergeNodes requests one synthesis of two or more nodes
func (c *Client) MergeNodes(ctx context.Context, req MergeRequest) (*MergeResponse, error) {
	var resp MergeResponse
	if err := c.post(ctx, "merge", "/graph/merge", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SuggestMerge requests synthesis suggestions for a node set
func (c *Client) SuggestMerge(ctx context.Context, req SuggestMergeRequest) (*SuggestResponse, error) {
	var resp SuggestResponse
	if err := c.post(ctx, "merge_suggest", "/graph/merge/suggest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateNodeFromPrompt requests a single node from a free-form prompt
func (c *Client) CreateNodeFromPrompt(ctx context.Context, req CreateNodeRequest) (*CreateNodeResponse, error) {
	var resp CreateNodeResponse
	if err := c.post(ctx, "create_node", "/graph/node", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post runs one request/response call: marshal, send, decode, validate
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	start := time.Now()
	err := c.doPost(ctx, op, path, body, out)
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordBackendRequest(op, status, time.Since(start))
	return err
}

func (c *Client) doPost(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &RequestError{Op: op, Cause: err}
	}

	req, err := c.newRequest(ctx, path, payload)
	if err != nil {
		return &RequestError{Op: op, Cause: err}
	}

	timer := logging.StartTimer(c.logger, "backend request",
		logging.Operation(op),
		logging.Endpoint(path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		timer.EndError(err)
		return &RequestError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		timer.EndError(fmt.Errorf("status %d", resp.StatusCode))
		return &RequestError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		timer.EndError(err)
		return &RequestError{Op: op, Cause: err}
	}
	if err := c.validate.Struct(out); err != nil {
		timer.EndError(err)
		return &RequestError{Op: op, Cause: err}
	}

	timer.End()
	return nil
}

func (c *Client) newRequest(ctx context.Context, path string, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
