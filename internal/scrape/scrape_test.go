package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/ppiankov/parlasf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mpPage = `<html><body>
<div class="nav"><ul><li><a href="/ignored">nav</a></li></ul></div>
<div class="article">
  <p>(150. löggjafarþing) ræður</p>
  <ul>
    <li><a href="/altext/raeda/150/001.html">12.09.2019 1. fundur kl. 20:15 stefnuræða forsætisráðherra</a></li>
    <li><a href="/altext/raeda/150/002.html">13.09.2019 2. fundur andsvar</a></li>
  </ul>
  <p>(150. löggjafarþing)um fundarstjórn</p>
  <ul>
    <li><a href="/altext/raeda/150/003.html">14.09.2019 3. fundur kl. 10:31 athugasemd</a></li>
    <li>no link</li>
  </ul>
</div>
</body></html>`

func TestSpeechLinks(t *testing.T) {
	links, err := SpeechLinks(strings.NewReader(mpPage), "https://www.althingi.is")
	require.NoError(t, err)
	require.Len(t, links, 3)

	assert.Equal(t, TypedLink{URL: "https://www.althingi.is/altext/raeda/150/001.html", Type: "stefnuræða forsætisráðherra"}, links[0])
	assert.Equal(t, "andsvar", links[1].Type)
	// heading categories win over link text
	assert.Equal(t, "um fundarstjórn", links[2].Type)
}

func TestArticleLinks(t *testing.T) {
	page := `<html><body><a href="?x=0">outside</a>
<div class="wide article"><a href="?lthing=150">150</a><span><a href="?lthing=149">149</a></span><a>no href</a></div>
<div class="article"><a href="?lthing=1">second article</a></div></body></html>`

	links, err := ArticleLinks(strings.NewReader(page), "https://www.althingi.is/raedur/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.althingi.is/raedur/?lthing=150",
		"https://www.althingi.is/raedur/?lthing=149",
	}, links)
}

func TestArticleLinks_NoArticle(t *testing.T) {
	links, err := ArticleLinks(strings.NewReader("<html><body><a href='x'>x</a></body></html>"), "")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCleanType(t *testing.T) {
	assert.Equal(t, "um andsvar", CleanType("kl. 13:03 um andsvar"))
	assert.Equal(t, "andsvar", CleanType("andsvar"))
	assert.Equal(t, "ræða", CleanType("kl. 9:45 ræða"))
}

func TestTypeFromLinkText(t *testing.T) {
	assert.Equal(t, "fyrri umræða", typeFromLinkText("01.02.2003 55. fundur kl. 9:05 fyrri umræða"))
	assert.Equal(t, "short", typeFromLinkText(" short "))
}

func newSite(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/raedur/" && q.Get("mp") != "":
			if q.Get("mp") == "broken" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = fmt.Fprint(w, mpPage)
		case r.URL.Path == "/raedur/" && q.Get("lthing") != "":
			_, _ = fmt.Fprint(w, `<div class="article"><a href="?lthing=150&amp;mp=ABC">A</a><a href="?lthing=150&amp;mp=broken">B</a></div>`)
		case r.URL.Path == "/raedur/":
			_, _ = fmt.Fprint(w, `<div class="article"><a href="?lthing=150">150</a></div>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testScrapeConfig(serverURL string) model.ScrapeConfig {
	return model.ScrapeConfig{
		MainURL:           serverURL + "/raedur/",
		BaseURL:           "https://www.althingi.is",
		UserAgent:         "parlasf-test",
		Timeout:           5 * time.Second,
		MaxBodyBytes:      1 << 20,
		RequestsPerSecond: 1000,
		BurstSize:         10,
	}
}

func TestScraper_Run(t *testing.T) {
	var hits atomic.Int32
	server := newSite(t, &hits)
	defer server.Close()

	scraper := NewScraper(testScrapeConfig(server.URL), nil)
	urls, table, stats, err := scraper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.althingi.is/altext/raeda/150/001.html",
		"https://www.althingi.is/altext/raeda/150/002.html",
		"https://www.althingi.is/altext/raeda/150/003.html",
	}, urls)
	assert.Equal(t, "stefnuræða forsætisráðherra", table[urls[0]])
	assert.Equal(t, "um fundarstjórn", table[urls[2]])
	assert.Equal(t, Stats{Parliaments: 1, Members: 2, Failed: 1, Speeches: 3}, stats)
}

func TestScraper_UsesCache(t *testing.T) {
	var hits atomic.Int32
	server := newSite(t, &hits)
	defer server.Close()

	c := cache.NewMemoryCache[[]byte](time.Minute, time.Minute)
	scraper := NewScraper(testScrapeConfig(server.URL), c)

	_, _, _, err := scraper.Run(context.Background())
	require.NoError(t, err)
	first := hits.Load()

	_, table, _, err := scraper.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 3)
	// only the failing member page is requested again
	assert.Equal(t, first+1, hits.Load())
}

func TestScraper_MainListFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	scraper := NewScraper(testScrapeConfig(server.URL), nil)
	_, _, _, err := scraper.Run(context.Background())
	assert.ErrorContains(t, err, "scrape parliament list")
}
