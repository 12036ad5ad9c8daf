package reddit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reddit_archiver/internal/domain"
)

const (
	maxSnapshotBytes = 2048
	recordTimeout    = 5 * time.Second
)

// transientSignatures lists transport failures worth retrying.
var transientSignatures = []string{
	"connection reset by peer",
	"broken pipe",
	"unexpected eof",
	"tls handshake timeout",
	"server closed idle connection",
	"i/o timeout",
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Username    string
	AccessToken string
	UserAgent   string
	PageSize    int
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// TokenBucket is the account level allowance shared by every caller.
type TokenBucket interface {
	Acquire(ctx context.Context) error
	Update(state domain.RateLimitState)
	State() domain.RateLimitState
	Subject() string
}

// CallRecorder receives one event per upstream call.
type CallRecorder interface {
	Record(ctx context.Context, event CallEvent) error
}

// CallOptions are request parameters.
type CallOptions struct {
	Query url.Values
	Form  url.Values
}

// RawResponse is a successful upstream response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// CallEvent is the audit record of one call.
type CallEvent struct {
	Subject    string                `json:"subject"`
	Method     string                `json:"method"`
	Endpoint   string                `json:"endpoint"`
	Options    map[string][]string   `json:"options,omitempty"`
	StatusCode int                   `json:"status_code"`
	Attempt    int                   `json:"attempt"`
	Duration   time.Duration         `json:"duration"`
	Error      string                `json:"error,omitempty"`
	Response   string                `json:"response,omitempty"`
	RateLimit  domain.RateLimitState `json:"rate_limit"`
	At         time.Time             `json:"at"`
}

// Client issues rate limited calls against the Reddit OAuth API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	username    string
	token       string
	userAgent   string
	pageSize    int
	maxAttempts int
	retryDelay  time.Duration
	bucket      TokenBucket
	recorder    CallRecorder
	logger      *slog.Logger
}

// New creates a client. recorder may be nil.
func New(cfg Config, bucket TokenBucket, recorder CallRecorder, logger *slog.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		username:    cfg.Username,
		token:       cfg.AccessToken,
		userAgent:   cfg.UserAgent,
		pageSize:    cfg.PageSize,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay,
		bucket:      bucket,
		recorder:    recorder,
		logger:      logger.With("component", "reddit_client"),
	}
}

// Call performs one logical request. Each attempt takes a token from the bucket.
// Transient transport failures are retried with a fixed delay; everything else is
// returned as is.
func (c *Client) Call(ctx context.Context, method, endpoint string, opts CallOptions) (*RawResponse, error) {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.bucket.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("acquire token for %s: %w", endpoint, err)
		}

		var resp *RawResponse
		resp, err = c.doRequest(ctx, method, endpoint, opts, attempt)
		if err == nil {
			return resp, nil
		}

		if !isTransient(err) || attempt == c.maxAttempts {
			break
		}

		c.logger.Warn("request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"delay", c.retryDelay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	return nil, err
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, opts CallOptions, attempt int) (*RawResponse, error) {
	start := time.Now()
	event := CallEvent{
		Subject:  c.bucket.Subject(),
		Method:   method,
		Endpoint: endpoint,
		Options:  mergeOptions(opts),
		Attempt:  attempt,
		At:       start.UTC(),
	}

	resp, err := c.send(ctx, method, endpoint, opts, attempt)

	event.Duration = time.Since(start)
	event.RateLimit = c.bucket.State()
	if resp != nil {
		event.StatusCode = resp.StatusCode
		event.Response = snapshot(resp.Body)
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.emit(event)

	return resp, err
}

func (c *Client) send(ctx context.Context, method, endpoint string, opts CallOptions, attempt int) (*RawResponse, error) {
	u := c.baseURL + endpoint
	query := url.Values{"raw_json": {"1"}}
	for k, v := range opts.Query {
		query[k] = v
	}
	u += "?" + query.Encode()

	var body io.Reader
	if opts.Form != nil {
		body = strings.NewReader(opts.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if opts.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Method: method, Endpoint: endpoint, Attempts: attempt, Err: err}
	}
	defer resp.Body.Close()

	if state, ok := parseRateLimitHeaders(resp.Header, c.bucket.Subject(), time.Now()); ok {
		c.bucket.Update(state)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Method: method, Endpoint: endpoint, Attempts: attempt, Err: err}
	}

	raw := &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, &domain.UpstreamError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       snapshot(data),
		}
	}

	return raw, nil
}

// emit hands the event to the recorder without blocking the call.
func (c *Client) emit(event CallEvent) {
	if c.recorder == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("call recorder panicked", "endpoint", event.Endpoint, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := c.recorder.Record(ctx, event); err != nil {
			c.logger.Warn("failed to record api call", "endpoint", event.Endpoint, "error", err)
		}
	}()
}

func isTransient(err error) bool {
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// parseRateLimitHeaders reads X-Ratelimit-Remaining/Used/Reset.
func parseRateLimitHeaders(h http.Header, subject string, now time.Time) (domain.RateLimitState, bool) {
	remainingRaw := h.Get("X-Ratelimit-Remaining")
	resetRaw := h.Get("X-Ratelimit-Reset")
	if remainingRaw == "" || resetRaw == "" {
		return domain.RateLimitState{}, false
	}

	remaining, err := strconv.ParseFloat(remainingRaw, 64)
	if err != nil {
		return domain.RateLimitState{}, false
	}
	reset, err := strconv.ParseFloat(resetRaw, 64)
	if err != nil {
		return domain.RateLimitState{}, false
	}
	used, _ := strconv.ParseFloat(h.Get("X-Ratelimit-Used"), 64)

	return domain.RateLimitState{
		Subject:    subject,
		Remaining:  int(remaining),
		Limit:      int(remaining + used),
		RetryAfter: now.Add(time.Duration(reset * float64(time.Second))),
	}, true
}

func mergeOptions(opts CallOptions) map[string][]string {
	if len(opts.Query) == 0 && len(opts.Form) == 0 {
		return nil
	}
	out := make(map[string][]string, len(opts.Query)+len(opts.Form))
	for k, v := range opts.Query {
		out[k] = v
	}
	for k, v := range opts.Form {
		out[k] = v
	}
	return out
}

func snapshot(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > maxSnapshotBytes {
		return string(body[:maxSnapshotBytes])
	}
	return string(body)
}
