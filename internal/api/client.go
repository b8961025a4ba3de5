// Package api is the HTTP client for the remote farming tools. Data calls
// never return errors to the caller: on failure they log and hand back a
// fixed mock payload flagged with Fallback.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/cache"
	"golang.org/x/time/rate"
)

const (
	// ProductionURL is the hosted service.
	ProductionURL = "https://api.mykisanai.com"
	// DevelopmentURL is the local development server.
	DevelopmentURL = "http://localhost:8000"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	// DefaultLocation is sent with market queries that name no location.
	DefaultLocation = "Karnataka"

	defaultRequestsPerMinute = 120
)

// Endpoint paths.
const (
	PathSpeak           = "/tts_stt_tool/speak"
	PathCropDiagnosis   = "/crop_diagnosis_tool"
	PathMarketAdvisory  = "/market_advisory_tool"
	PathSchemeNavigator = "/scheme_navigator_tool"
)

// ErrEmptyUpload is returned when a multipart upload has no content.
var ErrEmptyUpload = errors.New("upload is empty")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Path, e.StatusCode)
}

// Config holds client settings.
type Config struct {
	// BaseURL overrides the environment-derived endpoint.
	BaseURL string
	// Environment selects the default endpoint ("production" or anything
	// else for local development).
	Environment string
	// Timeout for a single request; zero means DefaultTimeout.
	Timeout time.Duration
	// RequestsPerMinute caps outgoing requests; zero means the default.
	RequestsPerMinute int

	// Cache memoizes market and scheme responses when set.
	Cache *cache.Cache
	// CacheTTL is the lifetime of memoized responses; zero means the
	// cache default.
	CacheTTL time.Duration

	// HTTPClient replaces the default transport (tests).
	HTTPClient *http.Client
}

// BaseURLFor returns the endpoint for a build environment.
func BaseURLFor(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		return ProductionURL
	}
	return DevelopmentURL
}

// Client talks to the remote farming tools. Construct one with NewClient
// and pass it to whoever needs it.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewClient creates a client from cfg.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLFor(cfg.Environment)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	// The timeout applies even to injected clients.
	hc := *httpClient
	hc.Timeout = timeout

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &hc,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// postJSON sends body as JSON to path and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("unable to encode request: %w", err)
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(payload), out)
}

// formFile is one file part of a multipart upload.
type formFile struct {
	field    string
	filename string
	data     []byte
}

// postMultipart sends fields and files as multipart/form-data.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files []formFile, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		if len(f.data) == 0 {
			return fmt.Errorf("%s: %w", f.field, ErrEmptyUpload)
		}
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return fmt.Errorf("unable to create form file: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return fmt.Errorf("unable to write form file: %w", err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("unable to write form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finish multipart body: %w", err)
	}

	return c.do(ctx, path, w.FormDataContentType(), &buf, out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	log.Debug("api request", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode %s response: %w", path, err)
	}
	return nil
}
