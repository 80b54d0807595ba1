package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client talks to a chess-server over HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Health(ctx context.Context) (*chessdto.HealthResponse, error) {
	var out chessdto.HealthResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/health", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession starts a game, from fen when non-empty.
func (c *Client) CreateSession(ctx context.Context, fen string) (*chessdto.ActionResponse, error) {
	var out chessdto.ActionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/sessions", chessdto.CreateSessionRequest{FEN: fen}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Session(ctx context.Context, id string) (*chessdto.SessionView, error) {
	var out chessdto.SessionView
	if err := c.doJSON(ctx, fasthttp.MethodGet, sessionPath(id, ""), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, sessionPath(id, ""), nil, nil, false)
}

func (c *Client) Destinations(ctx context.Context, id, square string) (*chessdto.DestinationsResponse, error) {
	var out chessdto.DestinationsResponse
	path := sessionPath(id, "/destinations") + "?square=" + url.QueryEscape(square)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Click(ctx context.Context, id, square string) (*chessdto.ActionResponse, error) {
	var out chessdto.ActionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "/click"), chessdto.ClickRequest{Square: square}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Move(ctx context.Context, id, from, to string) (*chessdto.ActionResponse, error) {
	var out chessdto.ActionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "/move"), chessdto.MoveRequest{From: from, To: to}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Save(ctx context.Context, id, slot string) (*chessdto.ActionResponse, error) {
	var out chessdto.ActionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "/save"), chessdto.SlotRequest{Slot: slot}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Load(ctx context.Context, id, slot string) (*chessdto.ActionResponse, error) {
	var out chessdto.ActionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "/load"), chessdto.SlotRequest{Slot: slot}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FEN(ctx context.Context, id string) (string, error) {
	var out chessdto.FENResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, sessionPath(id, "/fen"), nil, &out, true); err != nil {
		return "", err
	}
	return out.FEN, nil
}

// BoardPNG fetches the rendered board image.
func (c *Client) BoardPNG(ctx context.Context, id string, coords bool) ([]byte, error) {
	path := sessionPath(id, "/board.png")
	if coords {
		path += "?coords=1"
	}
	return c.doRaw(ctx, fasthttp.MethodGet, path, true)
}

func (c *Client) Results(ctx context.Context, limit int) ([]*chessdto.GameResult, error) {
	path := "/results"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out chessdto.HistoryResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Games, nil
}

func sessionPath(id, suffix string) string {
	return "/sessions/" + url.PathEscape(strings.TrimSpace(id)) + suffix
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	body, err := c.do(ctx, method, path, payload, retry)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, retry bool) ([]byte, error) {
	return c.do(ctx, method, path, nil, retry)
}

// do sends one request, retrying transport errors and 5xx when retry is set.
// Non-2xx responses carrying a JSON error body come back as chessdto.DomainError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if payload != nil {
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts || !retry {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := statusError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return nil, err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}
		return append([]byte(nil), resp.Body()...), nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status int
	Domain chessdto.DomainError
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chess api error: status=%d code=%s message=%s", e.Status, e.Domain.Code, e.Domain.Message)
}

// Code returns the domain error code of err, or "" when err is not a StatusError.
func Code(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Domain.Code
	}
	return ""
}

func statusError(status int, body []byte) error {
	se := &StatusError{Status: status}
	if err := json.Unmarshal(body, &se.Domain); err != nil || se.Domain.Code == "" {
		se.Domain = chessdto.DomainError{Code: "http_" + strconv.Itoa(status), Message: truncate(string(body), 512)}
	}
	return se
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
