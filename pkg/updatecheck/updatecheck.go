// SPDX-License-Identifier: MPL-2.0

package updatecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

const (
	// DefaultCacheTTL is how long a fetched version document is reused.
	DefaultCacheTTL = 10 * time.Minute

	// maxResponseBytes bounds the size of a version document (1 MB).
	maxResponseBytes = 1 << 20
)

var (
	// ErrNoVersionInfoURL is returned when the update source is not a
	// checkForUpdatesDetails source.
	ErrNoVersionInfoURL = errors.New("no version info URL")
	// ErrUnexpectedStatus is returned for non-200 responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrUnsupportedMediaType is returned when the response is not JSON.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrInvalidVersionInfo is returned for documents without a valid
	// version or url.
	ErrInvalidVersionInfo = errors.New("invalid version info")
)

type (
	// VersionInfo is the document served at a versionInfoURL.
	VersionInfo struct {
		Version semver.Version `json:"version"`
		URL     string         `json:"url"`
	}

	// Result is the outcome of comparing an installed version with the
	// latest published one.
	Result struct {
		Current   semver.Version
		Latest    semver.Version
		URL       string
		Available bool
	}

	// Checker fetches and caches version documents.
	Checker struct {
		httpClient *http.Client
		userAgent  string
		cacheTTL   time.Duration
		cache      *gocache.Cache
		logger     *log.Logger
	}

	// Option configures a Checker.
	Option func(*Checker)
)

// WithHTTPClient sets the HTTP client, useful for tests or proxies.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.httpClient = c }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(ch *Checker) { ch.userAgent = ua }
}

// WithCacheTTL sets how long fetched documents are reused. A zero TTL
// disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(ch *Checker) { ch.cacheTTL = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(ch *Checker) { ch.logger = l }
}

// New returns a Checker. Defaults: http.DefaultClient, user agent
// "oreui/dev", DefaultCacheTTL.
func New(opts ...Option) *Checker {
	c := &Checker{
		httpClient: http.DefaultClient,
		userAgent:  "oreui/dev",
		cacheTTL:   DefaultCacheTTL,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheTTL > 0 {
		c.cache = gocache.New(c.cacheTTL, 2*c.cacheTTL)
	}
	return c
}

// Check compares current with the latest version published by src.
func (c *Checker) Check(ctx context.Context, src manifest.UpdateSource, current semver.Version) (Result, error) {
	s, ok := src.(manifest.CheckForUpdatesSource)
	if !ok {
		return Result{}, fmt.Errorf("%T: %w", src, ErrNoVersionInfoURL)
	}
	info, err := c.Fetch(ctx, s.Details.VersionInfoURL)
	if err != nil {
		return Result{}, err
	}
	cmp, err := semver.Compare(info.Version, current)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Current:   current,
		Latest:    info.Version,
		URL:       info.URL,
		Available: cmp > 0,
	}, nil
}

// Fetch returns the version document at url, from cache when fresh.
func (c *Checker) Fetch(ctx context.Context, url string) (VersionInfo, error) {
	if c.cache != nil {
		if v, found := c.cache.Get(url); found {
			if info, ok := v.(VersionInfo); ok {
				c.logger.Debug("version info cache hit", "url", url)
				return info, nil
			}
		}
	}

	info, err := c.fetch(ctx, url)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	if c.cache != nil {
		c.cache.SetDefault(url, info)
	}
	return info, nil
}

func (c *Checker) fetch(ctx context.Context, url string) (VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return VersionInfo{}, err
	}
	req.Header.Set("Accept", "application/json, text/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetching version info", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VersionInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VersionInfo{}, fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || (mt != "application/json" && mt != "text/json") {
		return VersionInfo{}, fmt.Errorf("%w %q", ErrUnsupportedMediaType, resp.Header.Get("Content-Type"))
	}

	var info VersionInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&info); err != nil {
		return VersionInfo{}, fmt.Errorf("%w: %w", ErrInvalidVersionInfo, err)
	}
	if ok, errs := info.Version.IsValid(); !ok {
		return VersionInfo{}, fmt.Errorf("%w: %w", ErrInvalidVersionInfo, errors.Join(errs...))
	}
	if info.URL == "" {
		return VersionInfo{}, fmt.Errorf("%w: missing url", ErrInvalidVersionInfo)
	}
	return info, nil
}
