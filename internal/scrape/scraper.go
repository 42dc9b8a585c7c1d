// Package scrape builds the speech type table from the parliament website
package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/ppiankov/parlasf/internal/speechtype"
	"github.com/ppiankov/parlasf/internal/worker"
	"github.com/rs/zerolog/log"
)

// Scraper walks the speech listing: parliaments, then members, then the
// speeches of each member
type Scraper struct {
	fetcher *Fetcher
	limiter *worker.Limiter
	cache   cache.Cache
	mainURL string
	baseURL string
}

// Stats summarises a scrape run
type Stats struct {
	Parliaments int
	Members     int
	Failed      int
	Speeches    int
}

// NewScraper creates a scraper from the scrape configuration.
// The cache may be nil.
func NewScraper(cfg model.ScrapeConfig, c cache.Cache) *Scraper {
	return &Scraper{
		fetcher: NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBodyBytes, cfg.RespectRobots,
			cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy, c),
		limiter: worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize),
		cache:   c,
		mainURL: cfg.MainURL,
		baseURL: cfg.BaseURL,
	}
}

// Run scrapes every speech link reachable from the main listing.
// It returns the URLs in first-seen order and the table of cleaned types.
// Member pages that fail are logged and skipped; a failing main listing
// is an error.
func (s *Scraper) Run(ctx context.Context) ([]string, speechtype.Table, Stats, error) {
	var stats Stats

	parliaments, err := s.links(ctx, s.mainURL)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("scrape parliament list: %w", err)
	}
	stats.Parliaments = len(parliaments)

	var urls []string
	table := make(speechtype.Table)
	for _, parla := range parliaments {
		members, err := s.links(ctx, parla)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, stats, ctx.Err()
			}
			log.Warn().Err(err).Str("url", parla).Msg("skipping parliament")
			stats.Failed++
			continue
		}
		for _, mp := range members {
			stats.Members++
			speeches, err := s.speeches(ctx, mp)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, stats, ctx.Err()
				}
				log.Warn().Err(err).Str("url", mp).Msg("skipping member page")
				stats.Failed++
				continue
			}
			for _, sp := range speeches {
				if _, seen := table[sp.URL]; !seen {
					urls = append(urls, sp.URL)
				}
				table[sp.URL] = CleanType(sp.Type)
			}
		}
		log.Info().Str("url", parla).Int("members", len(members)).Int("speeches", len(urls)).Msg("parliament scraped")
	}
	stats.Speeches = len(urls)
	return urls, table, stats, nil
}

func (s *Scraper) links(ctx context.Context, url string) ([]string, error) {
	page, err := s.page(ctx, url)
	if err != nil {
		return nil, err
	}
	return ArticleLinks(strings.NewReader(page), s.mainURL)
}

func (s *Scraper) speeches(ctx context.Context, url string) ([]TypedLink, error) {
	page, err := s.page(ctx, url)
	if err != nil {
		return nil, err
	}
	return SpeechLinks(strings.NewReader(page), s.baseURL)
}

// page returns the HTML of url, from the cache when possible
func (s *Scraper) page(ctx context.Context, url string) (string, error) {
	key := cache.CacheKey("page:" + url)
	if s.cache != nil {
		if data, ok := s.cache.Get(key, ""); ok {
			return string(data), nil
		}
	}

	if err := s.limiter.ApplyCrawlDelay(url, s.fetcher.CrawlDelay(ctx, url)); err != nil {
		return "", err
	}
	if err := s.limiter.Wait(ctx, url); err != nil {
		return "", err
	}
	result, err := s.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(key, "", []byte(result.HTML), 0); err != nil {
			log.Debug().Err(err).Str("url", url).Msg("page not cached")
		}
	}
	return result.HTML, nil
}
