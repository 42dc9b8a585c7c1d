package util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

const robotsMaxBytes = 512 << 10

// RobotsChecker answers robots.txt questions for the hosts the scraper
// visits. Parsed files are kept per host for the checker's lifetime. Downloaded
// files also go to store, when set, so the next scrape of the same site
// skips the download.
type RobotsChecker struct {
	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData

	client    *http.Client
	userAgent string // sent with requests
	token     string // matched against User-agent lines
	store     cache.Cache
}

// NewRobotsChecker creates a checker that downloads robots.txt through
// client. store may be nil.
func NewRobotsChecker(client *http.Client, userAgent string, store cache.Cache) *RobotsChecker {
	return &RobotsChecker{
		hosts:     make(map[string]*robotstxt.RobotsData),
		client:    client,
		userAgent: userAgent,
		token:     NormalizeUserAgent(userAgent),
		store:     store,
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay its
// host asks for. A robots.txt that cannot be downloaded allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	data := r.rules(ctx, u)
	if data == nil {
		return true, 0, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, r.token), data.FindGroup(r.token).CrawlDelay, nil
}

// rules returns the parsed robots.txt of u's host, nil when it could not
// be obtained. Failures are remembered too, so they are logged once.
func (r *RobotsChecker) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := u.Scheme + "://" + u.Host

	r.mu.Lock()
	data, seen := r.hosts[host]
	r.mu.Unlock()
	if seen {
		return data
	}

	data, err := r.load(ctx, host)
	if err != nil {
		log.Warn().Err(err).Str("host", u.Host).Msg("robots.txt unavailable, allowing")
		data = nil
	}

	r.mu.Lock()
	r.hosts[host] = data
	r.mu.Unlock()
	return data
}

// load returns the parsed robots.txt of host, from the store when possible.
// Stored values are the HTTP status on the first line followed by the body.
func (r *RobotsChecker) load(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	key := cache.CacheKey("robots:" + host)
	if r.store != nil {
		if raw, ok := r.store.Get(key, ""); ok {
			if status, body, ok := splitStoredRobots(raw); ok {
				return robotstxt.FromStatusAndBytes(status, body)
			}
			_ = r.store.Delete(key)
		}
	}

	status, body, err := r.download(ctx, host+"/robots.txt")
	if err != nil {
		return nil, err
	}
	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	// server errors disallow everything, which should not outlive this run
	if r.store != nil && status < http.StatusInternalServerError {
		stored := append([]byte(strconv.Itoa(status)+"\n"), body...)
		if err := r.store.Set(key, "", stored, 0); err != nil {
			log.Debug().Err(err).Str("host", host).Msg("robots.txt not cached")
		}
	}
	return data, nil
}

func (r *RobotsChecker) download(ctx context.Context, robotsURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsMaxBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read robots.txt: %w", err)
	}
	return resp.StatusCode, body, nil
}

func splitStoredRobots(raw []byte) (int, []byte, bool) {
	line, body, found := bytes.Cut(raw, []byte("\n"))
	if !found {
		return 0, nil, false
	}
	status, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, nil, false
	}
	return status, body, true
}

// NormalizeUserAgent reduces a user agent to the product token that
// robots.txt groups are matched against
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
