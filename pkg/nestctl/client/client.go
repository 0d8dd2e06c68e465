package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telekom/nestctl/pkg/metrics"
	"github.com/telekom/nestctl/pkg/nestctl/config"
	"github.com/telekom/nestctl/pkg/nestctl/credstore"
	"github.com/telekom/nestctl/pkg/nestctl/errdefs"
	"github.com/telekom/nestctl/pkg/ratelimit"
)

const apiVersion = "v1"

type Client struct {
	rest      *resty.Client
	http      *http.Client
	baseURL   string
	projectID string
	userAgent string
	timeout   time.Duration
	limiter   *ratelimit.Limiter
	log       *zap.SugaredLogger
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:   config.DefaultAPIEndpoint,
		userAgent: "nestctl",
		timeout:   config.DefaultTimeout,
		limiter:   ratelimit.New(ratelimit.DefaultSDMConfig()),
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := credstore.ValidateProjectID(c.projectID); err != nil {
		return nil, err
	}
	httpClient := c.http
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c.rest = resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(c.baseURL, "/")).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent).
		SetLogger(c.log)
	return c, nil
}

// WithHTTPClient sets the transport, normally the authenticated client from the
// Authenticator.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		c.http = httpClient
		return nil
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return nil
		}
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			return fmt.Errorf("invalid API endpoint %q: must be an http(s) URL", baseURL)
		}
		c.baseURL = baseURL
		return nil
	}
}

func WithProjectID(projectID string) Option {
	return func(c *Client) error {
		c.projectID = strings.TrimSpace(projectID)
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout > 0 {
			c.timeout = timeout
		}
		return nil
	}
}

func WithRateLimit(cfg ratelimit.Config) Option {
	return func(c *Client) error {
		c.limiter = ratelimit.New(cfg)
		return nil
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

func (c *Client) ProjectID() string {
	return c.projectID
}

// ResolveDeviceName turns a short device id into the fully-qualified resource
// name. References that already carry the enterprises/ prefix are returned
// unchanged.
func ResolveDeviceName(ref, projectID string) string {
	if strings.HasPrefix(ref, "enterprises/") {
		return ref
	}
	return fmt.Sprintf("enterprises/%s/devices/%s", projectID, ref)
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errdefs.Wrap(errdefs.ErrNetwork, err, "%s aborted", operation)
	}
	requestID := uuid.NewString()
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	c.log.Debugw("Sending request", "operation", operation, "method", method, "path", endpoint, "requestID", requestID)
	resp, err := req.Execute(method, endpoint)
	metrics.APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequests.WithLabelValues(operation, "error").Inc()
		return transportError(operation, err)
	}
	metrics.APIRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode())).Inc()
	c.log.Debugw("Received response", "operation", operation, "status", resp.StatusCode(), "requestID", requestID, "duration", resp.Time())

	if resp.IsError() {
		return classify(operation, endpoint, decodeError(resp))
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errdefs.Wrap(errdefs.ErrNetwork, err, "%s: malformed response", operation)
	}
	return nil
}

// transportError keeps authentication failures raised by the token source
// intact and classifies everything else as a network failure.
func transportError(operation string, err error) error {
	if errors.Is(err, errdefs.ErrNotAuthenticated) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return errdefs.Wrap(errdefs.ErrNetwork, err, "%s failed", operation)
}

func classify(operation, endpoint string, httpErr *HTTPError) error {
	switch httpErr.StatusCode {
	case http.StatusNotFound:
		return errdefs.Wrap(errdefs.ErrDeviceNotFound, httpErr, "%s not found", strings.TrimPrefix(endpoint, apiVersion+"/"))
	case http.StatusUnauthorized, http.StatusForbidden:
		return errdefs.Wrap(errdefs.ErrAuth, httpErr, "%s was rejected by the provider", operation)
	default:
		return errdefs.Wrap(errdefs.ErrNetwork, httpErr, "%s failed", operation)
	}
}

// apiError is the Google API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func decodeError(resp *resty.Response) *HTTPError {
	body := resp.Body()
	var envelope apiError
	if len(body) > 0 {
		_ = json.Unmarshal(body, &envelope)
	}
	msg := strings.TrimSpace(envelope.Error.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = resp.Status()
	}
	return &HTTPError{StatusCode: resp.StatusCode(), Status: envelope.Error.Status, Message: msg}
}

type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}
