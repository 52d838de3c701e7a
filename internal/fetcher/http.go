package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher retrieves raw content for one external source URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// MaxAttempts is the total number of attempts per fetch (including
	// the first try). Default: 3.
	MaxAttempts int
	// BaseDelay is the backoff unit: attempt i sleeps i*BaseDelay before
	// the next try. Default: 1s.
	BaseDelay     time.Duration
	RatePerSecond int
}

// HTTPFetcher implements Fetcher using net/http with bounded retries,
// linear backoff, and per-host rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = time.Second
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = 5
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "facility-assistant/1.0"
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RatePerSecond), f.opts.RatePerSecond)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch retrieves the URL body as a string. Any transport failure or
// non-2xx response counts as an attempt failure; after MaxAttempts
// exhausted attempts the last error is returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	lim := f.limiterFor(rawURL)

	var lastErr error
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "fetcher: rate limiter wait")
		}

		body, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}

		zap.L().Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt == f.opts.MaxAttempts {
			break
		}
		if err := f.backoff(ctx, attempt); err != nil {
			break
		}
	}

	return "", eris.Wrapf(lastErr, "fetcher: %d attempts exhausted for %s", f.opts.MaxAttempts, rawURL)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "do request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", eris.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "read body")
	}
	return string(body), nil
}

// backoff sleeps attempt*BaseDelay, honoring context cancellation.
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt) * f.opts.BaseDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
