package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnsupportedScheme is returned for URIs that are neither network,
// file nor data URIs.
var ErrUnsupportedScheme = errors.New("unsupported URI scheme")

// ErrMalformedDataURI is returned when a data: URI has no payload separator
// or an undecodable payload.
var ErrMalformedDataURI = errors.New("malformed data URI")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.Code, e.URL)
}

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// Options configures a DefaultFetcher.
type Options struct {
	// BaseURL resolves relative URIs. It is either a network URL or a local
	// directory.
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Rate limits network requests per second; zero means unlimited.
	Rate   float64
	Burst  int
	Client *http.Client
	Logger *zap.Logger
}

// DefaultFetcher fetches network, file and data URIs. Network requests are
// rate limited and resolved against the base URL.
type DefaultFetcher struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

const defaultUserAgent = "htmlbox/1.0 (compatible; Go)"

// NewFetcher creates a fetcher from opts.
func NewFetcher(opts Options) *DefaultFetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultFetcher{
		baseURL:   opts.BaseURL,
		userAgent: ua,
		client:    client,
		limiter:   limiter,
		logger:    logger.Named("fetch"),
	}
}

// Resolve returns the absolute form of uri against the base URL.
func (f *DefaultFetcher) Resolve(uri string) string {
	uri = strings.TrimSpace(uri)
	switch {
	case IsDataURI(uri), IsNetworkURL(uri), strings.HasPrefix(uri, "file://"):
		return uri
	case IsNetworkURL(f.baseURL):
		return ResolveURL(f.baseURL, uri)
	case f.baseURL != "" && !filepath.IsAbs(uri):
		return filepath.Join(f.baseURL, filepath.FromSlash(uri))
	}
	return uri
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.Resolve(uri)
	switch {
	case IsDataURI(resolved):
		return DecodeDataURI(resolved)
	case IsNetworkURL(resolved):
		return f.fetchNetwork(ctx, resolved)
	case strings.HasPrefix(resolved, "file://"):
		u, err := url.Parse(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("parsing %s: %w", resolved, err)
		}
		return f.fetchFile(ctx, u.Path)
	case strings.Contains(resolved, "://"):
		return nil, "", fmt.Errorf("fetching %s: %w", resolved, ErrUnsupportedScheme)
	}
	return f.fetchFile(ctx, resolved)
}

func (f *DefaultFetcher) fetchNetwork(ctx context.Context, rawURL string) ([]byte, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("waiting to fetch %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	f.logger.Debug("fetched", zap.String("url", rawURL), zap.Int("bytes", len(body)))
	return body, resp.Header.Get("Content-Type"), nil
}

func (f *DefaultFetcher) fetchFile(ctx context.Context, path string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return body, contentTypeByExtension(path), nil
}

// FetchCSS fetches a stylesheet and returns its text. Content types other
// than text/* or *css* are rejected.
func (f *DefaultFetcher) FetchCSS(ctx context.Context, uri string) (string, error) {
	body, contentType, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}

// FetchImage fetches an image and returns its raw bytes.
func (f *DefaultFetcher) FetchImage(ctx context.Context, uri string) ([]byte, error) {
	body, _, err := f.Fetch(ctx, uri)
	return body, err
}

// ResolveURL resolves a possibly relative ref against base. ref is returned
// unchanged when either fails to parse.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL reports whether s is an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI returns the payload and media type of a data: URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !IsDataURI(uri) {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrMalformedDataURI)
	}
	meta, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing comma", ErrMalformedDataURI)
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	contentType := meta
	if contentType == "" {
		contentType = "text/plain;charset=US-ASCII"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(payload), "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
		}
		return data, contentType, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return []byte(text), contentType, nil
}

var extensionTypes = map[string]string{
	".css":  "text/css",
	".html": "text/html",
	".htm":  "text/html",
	".js":   "text/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

func contentTypeByExtension(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}
