package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/distritask/dashboard/internal/core/ports"
	"github.com/distritask/dashboard/internal/infrastructure/logger"
	"github.com/valyala/fasthttp"
)

const userAgent = "DistriTaskBoard/1.0"

// Client talks to the external task-intake service.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *fasthttp.Client
	logger     *logger.Logger
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logger.Logger
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		httpClient: &fasthttp.Client{
			Name:         userAgent,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		logger: cfg.Logger,
	}
}

// Submit asks the intake service to enqueue a new task. The request has no body.
// ctx is checked before sending and its deadline bounds the request; cancelling
// ctx does not abort a request already in flight, which still ends within the
// client timeout.
func (c *Client) Submit(ctx context.Context) (*ports.SubmitResult, error) {
	start := time.Now()
	url := c.baseURL + "/submit"

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Cache-Control", "no-cache")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	c.logger.Infow("intake_submit_request", "url", url, "timeout", timeout)
	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		c.logger.Warnw("intake_submit_network_error", "url", url, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	body := resp.Body()
	c.logger.Infow("intake_submit_response",
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"resp_bytes", len(body),
	)

	if status < 200 || status > 299 {
		c.logger.Warnw("intake_submit_bad_status", "status", status)
		return nil, fmt.Errorf("intake returned status %d %s", status, fasthttp.StatusMessage(status))
	}

	var result ports.SubmitResult
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warnw("intake_submit_parse_error", "error", err)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
