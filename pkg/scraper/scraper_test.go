package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithConfig_Defaults(t *testing.T) {
	s := New()

	assert.Equal(t, 0, s.config.MaxDepth)
	assert.Equal(t, 20, s.config.MaxPages)
	assert.Equal(t, 2.0, s.config.RateLimit)
	assert.Equal(t, 4, s.config.Concurrency)
	assert.Equal(t, []string{".html", ".htm", "/", ""}, s.config.AllowedExtensions)
}

func TestShouldProcessURL(t *testing.T) {
	s := NewWithConfig(ScraperConfig{
		IgnorePatterns: []string{"/ignore/", "private"},
	})

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/docs/", true},
		{"https://example.com/page.html", true},
		{"https://example.com/docs/intro", true},
		{"https://example.com/ignore/page.html", false},
		{"https://example.com/private.html", false},
		{"https://other-domain.com/page.html", false},
		{"https://example.com/file.pdf", false},
		{"mailto:help@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.shouldProcessURL("example.com", tt.url))
		})
	}
}

func testSite(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	hits := &sync.Map{}
	pages := map[string]string{
		"/": `<html><head><title>Screen Readers</title></head><body>
			<nav>Menu Privacy Policy</nav>
			<main><h1>Getting started</h1><p>Press Insert plus Down Arrow to read all.</p>
			<a href="/jaws.html">JAWS</a>
			<a href="/nvda/#keys">NVDA</a>
			<a href="https://elsewhere.example/page.html">External</a>
			<a href="/manual.pdf">Manual</a>
			<a href="/missing.html">Missing</a>
			</main></body></html>`,
		"/jaws.html": `<html><head><title>JAWS</title></head><body>
			<article>JAWS uses the Insert key as its modifier.</article>
			<a href="/deep.html">Deeper</a>
			<a href="/">Home</a></body></html>`,
		"/nvda/": `<html><head><title>NVDA</title></head><body><p>NVDA browse mode.</p></body></html>`,
		"/deep.html": `<html><head><title>Deep</title></head><body><p>Too deep.</p></body></html>`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := hits.LoadOrStore(r.URL.Path, new(int))
		*n.(*int)++
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, hits
}

func TestScrape(t *testing.T) {
	server, hits := testSite(t)

	s := NewWithConfig(ScraperConfig{MaxDepth: 1, RateLimit: 100, Concurrency: 1})
	refs, err := s.Scrape(context.Background(), server.URL+"/")
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, server.URL+"/", refs[0].URL)
	assert.Equal(t, "Screen Readers", refs[0].Title)
	assert.Contains(t, refs[0].Content, "Press Insert plus Down Arrow to read all.")
	assert.NotContains(t, refs[0].Content, "Menu")

	var titles []string
	for _, ref := range refs[1:] {
		titles = append(titles, ref.Title)
	}
	sort.Strings(titles)
	assert.Equal(t, []string{"JAWS", "NVDA"}, titles)

	_, deep := hits.Load("/deep.html")
	assert.False(t, deep, "pages beyond MaxDepth are not fetched")
	_, pdf := hits.Load("/manual.pdf")
	assert.False(t, pdf)
	home, _ := hits.Load("/")
	assert.Equal(t, 1, *home.(*int), "pages are fetched once")
}

func TestScrape_MaxPages(t *testing.T) {
	server, _ := testSite(t)

	s := NewWithConfig(ScraperConfig{MaxDepth: 3, MaxPages: 2, RateLimit: 100})
	refs, err := s.Scrape(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestScrape_ProgressCallback(t *testing.T) {
	server, _ := testSite(t)

	var mu sync.Mutex
	var seen []string
	s := NewWithConfig(ScraperConfig{
		RateLimit: 100,
		OnProgress: func(u string) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, u)
		},
	})

	_, err := s.Scrape(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/"}, seen)
}

func TestScrape_StartPageErrors(t *testing.T) {
	server, _ := testSite(t)
	s := NewWithConfig(ScraperConfig{RateLimit: 100})

	_, err := s.Scrape(context.Background(), server.URL+"/missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received status code 404")

	_, err = s.Scrape(context.Background(), "ftp://example.com/")
	assert.Error(t, err)
}

func TestScrape_Cancelled(t *testing.T) {
	server, _ := testSite(t)
	s := NewWithConfig(ScraperConfig{RateLimit: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scrape(ctx, server.URL+"/")
	assert.Error(t, err)
}
