package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/util"
)

const fetchMaxAttempts = 3

// fetchSleepFunc is the sleep used between retries; tests replace it
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned for URLs robots.txt forbids
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher fetches HTML pages
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher. With respectRobots set every URL is
// checked against its host's robots.txt before fetching; robots files are
// downloaded through the same proxies and kept in store (which may be nil).
func NewFetcher(
	timeout time.Duration,
	userAgent string,
	maxBytes int64,
	respectRobots bool,
	httpProxy, httpsProxy, noProxy string,
	store cache.Cache,
) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
	if respectRobots {
		f.robots = util.NewRobotsChecker(f.httpClient, userAgent, store)
	}
	return f
}

// FetchResult contains the fetched HTML and response details
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetch retrieves HTML content from the given URL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, _, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "is,en;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		HTML:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry fetches a page, retrying transient failures with
// exponential backoff up to three attempts in total
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	operation := func() (*FetchResult, error) {
		result, err := f.Fetch(ctx, rawURL)
		if err != nil && !isRetryableFetchError(err) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}

	bkoff := backoff.NewExponentialBackOff()
	bkoff.InitialInterval = time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(bkoff, fetchMaxAttempts-1), ctx)

	return backoff.RetryNotifyWithTimerAndData(operation, policy, nil, &sleepTimer{})
}

// isRetryableFetchError reports whether err is a transient failure:
// 5xx and 429 responses or network errors from the client
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "fetch: ") {
		return true
	}
	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		return strings.HasPrefix(rest, "5") || strings.HasPrefix(rest, "429")
	}
	return false
}

// sleepTimer is a backoff.Timer driven by fetchSleepFunc
type sleepTimer struct {
	c chan time.Time
}

func (t *sleepTimer) Start(d time.Duration) {
	if t.c == nil {
		t.c = make(chan time.Time, 1)
	}
	fetchSleepFunc(d)
	t.c <- time.Now()
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time {
	return t.c
}

// CrawlDelay returns the robots.txt crawl delay for rawURL, zero when
// robots.txt is not consulted
func (f *Fetcher) CrawlDelay(ctx context.Context, rawURL string) time.Duration {
	if f.robots == nil {
		return 0
	}
	_, delay, _ := f.robots.CanFetch(ctx, rawURL)
	return delay
}
