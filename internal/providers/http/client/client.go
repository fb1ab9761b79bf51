package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/resilience"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent unless a source or request overrides it.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Config configures the fetch client
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	Retries      int
	UserAgent    string
	RPS          float64
}

// DefaultConfig returns the standard fetch settings
func DefaultConfig() Config {
	return Config{
		Timeout:      15 * time.Second,
		MaxRedirects: 5,
		UserAgent:    DefaultUserAgent,
	}
}

// Response is the text form of a fetched page.
type Response struct {
	URL         string `json:"url"`
	FinalURL    string `json:"finalUrl"`
	Body        string `json:"body"`
	ContentType string `json:"contentType"`
	Status      int    `json:"status"`
}

// Observer receives one call per completed fetch attempt.
type Observer interface {
	ObserveFetch(host string, status int, elapsed time.Duration, err error)
}

// BreakerObserver is implemented by observers that also track per-host
// breaker transitions.
type BreakerObserver interface {
	ObserveBreakerState(name string, state resilience.State)
}

// Client fetches source pages with rate limiting and a circuit breaker per host
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	config   Config
	logger   *zap.Logger
	observer Observer
	mu       sync.RWMutex
}

// NewClient creates a fetch client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	// Redirects are followed by the inner client, so the cap belongs there.
	retryClient.HTTPClient.CheckRedirect = resty.FlexibleRedirectPolicy(cfg.MaxRedirects).Apply

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.SetTimeout(cfg.Timeout)
	restyClient.JSONMarshal = sonic.Marshal
	restyClient.JSONUnmarshal = sonic.Unmarshal

	c := &Client{
		resty:   restyClient,
		limiter: newLimiter(cfg.RPS),
		config:  cfg,
		logger:  logger.Named("fetch"),
	}
	c.breakers = resilience.NewGroup("fetch", resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsClientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			c.logger.Warn("fetch breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			c.mu.RLock()
			bo, ok := c.observer.(BreakerObserver)
			c.mu.RUnlock()
			if ok {
				bo.ObserveBreakerState(name, to)
			}
		},
	})
	return c
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetObserver registers o to receive fetch outcomes
func (c *Client) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// BreakerStates returns the breaker state of every host contacted so far
func (c *Client) BreakerStates() map[string]resilience.State {
	return c.breakers.States()
}

// Fetch performs the request described by spec. Source headers are layered
// over the default User-Agent and under the request's own headers. Only 2xx
// and followed 3xx responses succeed; the client never retries unless
// configured to.
func (c *Client) Fetch(ctx context.Context, spec string, sourceHeaders map[string]string) (*Response, error) {
	req := ParseRequestSpec(spec)
	if req.URL == "" {
		return nil, ErrEmptyURL
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", req.URL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, req.URL)
	}

	c.mu.RLock()
	limiter, observer := c.limiter, c.observer
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	start := time.Now()
	resp, err := resilience.Call(c.breakers.Get(target.Host), func() (*Response, error) {
		return c.do(ctx, req, sourceHeaders)
	})
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.Status
	}
	var se *StatusError
	if errors.As(err, &se) {
		status = se.Status
	}
	if observer != nil {
		observer.ObserveFetch(target.Host, status, elapsed, err)
	}

	if err != nil {
		c.logger.Debug("fetch failed",
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("fetched",
		zap.String("url", req.URL),
		zap.String("final_url", resp.FinalURL),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed))
	return resp, nil
}

func (c *Client) do(ctx context.Context, spec RequestSpec, sourceHeaders map[string]string) (*Response, error) {
	r := c.resty.R().SetContext(ctx)
	r.SetHeader("User-Agent", c.config.UserAgent)
	r.SetHeaders(sourceHeaders)
	r.SetHeaders(spec.Headers)

	switch body := spec.Body.(type) {
	case nil:
	case string:
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		}
		r.SetBody(body)
	default:
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(body)
	}

	resp, err := r.Execute(spec.Method, spec.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", spec.URL, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest || resp.StatusCode() < http.StatusOK {
		return nil, &StatusError{URL: spec.URL, Status: resp.StatusCode()}
	}

	finalURL := spec.URL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	data := resp.Body()
	contentType := sniffContentType(data, resp.Header().Get("Content-Type"))
	return &Response{
		URL:         spec.URL,
		FinalURL:    finalURL,
		Body:        decodeBody(data, contentType),
		ContentType: strings.ToLower(contentType),
		Status:      resp.StatusCode(),
	}, nil
}
