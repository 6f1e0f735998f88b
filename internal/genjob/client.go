package genjob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"dcgen/internal/infra"
)

// Options configures the provider client.
type Options struct {
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs the HTTP calls of the submit/poll protocol against a
// generation provider endpoint.
type Client struct {
	httpClient *http.Client
	logger     infra.Logger
}

// Submission is the outcome of a submit call. Immediate is non-nil when the
// provider completed synchronously; otherwise RequestID identifies the queued
// job for polling.
type Submission struct {
	RequestID string
	Immediate *Envelope
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{httpClient: httpClient, logger: logger}
}

// Submit posts a JSON payload to the provider endpoint and interprets the
// acknowledgement.
func (c *Client) Submit(ctx context.Context, endpoint string, payload any) (*Submission, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("genjob: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("genjob: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	env, err := c.roundTrip(req, "submit")
	if err != nil {
		return nil, err
	}
	return c.interpret(endpoint, env)
}

// SubmitQuery issues a GET submission with query parameters. Used by the tts
// provider, which accepts its inputs in the URL and answers synchronously.
func (c *Client) SubmitQuery(ctx context.Context, endpoint string, params url.Values) (*Submission, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("genjob: parse endpoint: %w", err)
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("genjob: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	env, err := c.roundTrip(req, "submit")
	if err != nil {
		return nil, err
	}
	return c.interpret(endpoint, env)
}

// Status polls the provider for the given request id. Both submission and
// polling share one logical resource: polling is a GET to the same endpoint
// parameterized by requestId.
func (c *Client) Status(ctx context.Context, endpoint, requestID string) (*Envelope, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("genjob: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("requestId", requestID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("genjob: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.roundTrip(req, "poll")
}

func (c *Client) roundTrip(req *http.Request, op string) (*Envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("url", req.URL.Redacted()).
			Msg("genjob: provider returned error status")
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &env, nil
}

func (c *Client) interpret(endpoint string, env *Envelope) (*Submission, error) {
	if env.Immediate() {
		c.logger.Debug().Str("endpoint", endpoint).Msg("genjob: provider completed synchronously")
		return &Submission{RequestID: env.RequestRef(), Immediate: env}, nil
	}
	if !env.Accepted() {
		if msg := env.ErrorText(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrSubmissionRejected, msg)
		}
		return nil, ErrSubmissionRejected
	}
	ref := env.RequestRef()
	if ref == "" {
		if env.Status == StatusQueued && env.Position > 0 {
			return nil, fmt.Errorf("%w: queued at position %d without a tracking id", ErrSubmissionRejected, env.Position)
		}
		return nil, fmt.Errorf("%w: no request id returned", ErrSubmissionRejected)
	}
	c.logger.Debug().Str("endpoint", endpoint).Str("request_id", ref).Msg("genjob: job queued")
	return &Submission{RequestID: ref}, nil
}
