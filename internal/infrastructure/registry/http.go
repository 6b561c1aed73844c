// Package registry adapts external dependency-analysis services to
// ports.ComponentResolver.
package registry

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// Template placeholders replaced per artifact.
const (
	PlaceholderGroup     = "{group}"
	PlaceholderArtifact  = "{artifact}"
	PlaceholderVersion   = "{version}"
	PlaceholderPackaging = "{packaging}"
)

// DefaultTimeout bounds one registry request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrUnexpectedStatus is returned for any status other than 200 and 404.
	ErrUnexpectedStatus = errors.New("unexpected registry status")
	// ErrEmptyTemplate is returned when no URL template is configured.
	ErrEmptyTemplate = errors.New("registry url template is empty")
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("registry unavailable (circuit breaker open)")
)

// HTTPResolver fetches component license data with one GET per artifact.
type HTTPResolver struct {
	template  string
	client    *http.Client
	proxy     string
	timeout   time.Duration
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	redactor  *redact.Redactor
	logger    log.Logger
}

var _ ports.ComponentResolver = (*HTTPResolver)(nil)

// HTTPOption configures an HTTPResolver.
type HTTPOption func(*HTTPResolver)

// WithHTTPClient replaces the client. Proxy and timeout options are
// ignored when a client is given.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPResolver) {
		r.client = c
	}
}

// WithProxy routes requests through the proxy URL.
func WithProxy(proxy string) HTTPOption {
	return func(r *HTTPResolver) {
		r.proxy = proxy
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(r *HTTPResolver) {
		r.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(r *HTTPResolver) {
		r.userAgent = ua
	}
}

// WithRateLimit caps requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(r *HTTPResolver) {
		if perSecond <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBreaker trips after the given number of consecutive failures and
// stays open for the cool-down. Zero failures disables the breaker.
func WithBreaker(failures uint32, coolDown time.Duration) HTTPOption {
	return func(r *HTTPResolver) {
		if failures == 0 {
			r.breaker = nil
			return
		}
		r.breaker = newBreaker("registry", failures, coolDown, func() log.Logger { return r.logger })
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) HTTPOption {
	return func(r *HTTPResolver) {
		r.logger = log.OrNop(l)
	}
}

// NewHTTPResolver creates a resolver for the URL template.
func NewHTTPResolver(template string, opts ...HTTPOption) (*HTTPResolver, error) {
	if strings.TrimSpace(template) == "" {
		return nil, ErrEmptyTemplate
	}
	r := &HTTPResolver{
		template:  template,
		timeout:   DefaultTimeout,
		userAgent: "licensemap",
		redactor:  redact.New(),
		logger:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		client, err := r.buildClient()
		if err != nil {
			return nil, err
		}
		r.client = client
	}
	return r, nil
}

func (r *HTTPResolver) buildClient() (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if r.proxy != "" {
		p, err := url.Parse(r.proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", r.redactor.RedactURL(r.proxy), err)
		}
		transport.Proxy = http.ProxyURL(p)
	}
	return &http.Client{Timeout: r.timeout, Transport: transport}, nil
}

// URLFor expands the template for the coordinate.
func (r *HTTPResolver) URLFor(c artifact.Coordinate) string {
	packaging := c.Type
	if packaging == "" {
		packaging = "jar"
	}
	return strings.NewReplacer(
		PlaceholderGroup, url.PathEscape(c.GroupID),
		PlaceholderArtifact, url.PathEscape(c.ArtifactID),
		PlaceholderVersion, url.PathEscape(c.Version),
		PlaceholderPackaging, url.PathEscape(packaging),
	).Replace(r.template)
}

// Resolve implements ports.ComponentResolver.
func (r *HTTPResolver) Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if r.breaker == nil {
		return r.fetch(ctx, c)
	}
	return execute(r.breaker, func() (*component.Info, error) { return r.fetch(ctx, c) })
}

func (r *HTTPResolver) fetch(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	target := r.URLFor(c)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Accept", "application/json")

	log.Debug(ctx, r.logger, "querying registry",
		log.String("artifact", c.String()),
		log.String("url", r.redactor.RedactURL(target)))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry for %s: %w", c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", c, ports.ErrComponentNotFound)
	default:
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, c)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var info component.Info
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode registry response for %s: %w", c, err)
	}
	return &info, nil
}

func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip response: %w", err)
		}
		return zr, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
