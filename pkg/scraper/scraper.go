package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/xhad/guidegen/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type ScraperConfig struct {
	MaxDepth          int
	MaxPages          int
	RateLimit         float64 // requests per second
	Concurrency       int
	IgnorePatterns    []string
	AllowedExtensions []string
	Timeout           time.Duration
	UserAgent         string
	OnProgress        func(url string) // called concurrently
	Client            *http.Client
	Log               logrus.FieldLogger
}

// Scraper fetches reference pages for a guide. It only follows links on the
// host of the starting URL.
type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ScraperConfig) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	if config.MaxPages == 0 {
		config.MaxPages = 20
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.Concurrency == 0 {
		config.Concurrency = 4
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}
	if config.UserAgent == "" {
		config.UserAgent = "guidegen"
	}
	if config.Log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		config.Log = log
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Scraper{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Scraper {
	return NewWithConfig(ScraperConfig{})
}

// crawl is the state of one Scrape call.
type crawl struct {
	host    string
	mu      sync.Mutex
	visited map[string]bool
}

// claim marks u as visited and reports whether it was new.
func (c *crawl) claim(u string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visited[u] {
		return false
	}
	c.visited[u] = true
	return true
}

type page struct {
	ref   models.Reference
	links []string
}

// Scrape fetches startURL and the same-host pages it links to, breadth
// first, up to MaxDepth links away and MaxPages pages in total. Failing
// linked pages are logged and skipped; a failing start page is an error.
func (s *Scraper) Scrape(ctx context.Context, startURL string) ([]models.Reference, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid reference URL %s: %w", startURL, err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		return nil, fmt.Errorf("invalid reference URL %s: scheme must be http or https", startURL)
	}
	start.Fragment = ""

	c := &crawl{host: start.Host, visited: map[string]bool{start.String(): true}}
	level := []string{start.String()}
	var refs []models.Reference

	for depth := 0; depth <= s.config.MaxDepth && len(level) > 0; depth++ {
		if room := s.config.MaxPages - len(refs); len(level) > room {
			level = level[:room]
		}

		pages := make([]*page, len(level))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.config.Concurrency)
		for i, u := range level {
			g.Go(func() error {
				p, err := s.fetch(gctx, u)
				if err != nil {
					if depth == 0 || ctx.Err() != nil {
						return err
					}
					s.config.Log.WithFields(logrus.Fields{"url": u, "error": err}).Warn("reference page skipped")
					return nil
				}
				pages[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []string
		for _, p := range pages {
			if p == nil {
				continue
			}
			refs = append(refs, p.ref)
			for _, link := range p.links {
				if s.shouldProcessURL(c.host, link) && c.claim(link) {
					next = append(next, link)
				}
			}
		}
		level = next
	}

	return refs, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*page, error) {
	if s.config.OnProgress != nil {
		s.config.OnProgress(pageURL)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	base := resp.Request.URL
	var links []string
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		link, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		link.Fragment = ""
		links = append(links, link.String())
	})

	return &page{
		ref: models.Reference{
			URL:     pageURL,
			Title:   strings.TrimSpace(doc.Find("title").First().Text()),
			Content: extractMainContent(doc),
		},
		links: links,
	}, nil
}

func (s *Scraper) shouldProcessURL(host, urlStr string) bool {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsedURL.Host != host {
		return false
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false
	}

	path := strings.ToLower(parsedURL.Path)
	validExt := false
	for _, allowedExt := range s.config.AllowedExtensions {
		if allowedExt == "" {
			// extensionless paths such as /docs/intro
			if !strings.Contains(path[strings.LastIndex(path, "/")+1:], ".") {
				validExt = true
				break
			}
			continue
		}
		if strings.HasSuffix(path, allowedExt) {
			validExt = true
			break
		}
	}
	if !validExt {
		return false
	}

	for _, pattern := range s.config.IgnorePatterns {
		if strings.Contains(urlStr, pattern) {
			return false
		}
	}

	return true
}

var noisePatterns = []string{
	"Cookie Policy",
	"Accept Cookies",
	"Privacy Policy",
	"Terms of Service",
}

func cleanContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")

	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.TrimSpace(content)
}

func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, noscript").Remove()

	selectors := []string{
		"main",
		"article",
		".content",
		"#content",
		".documentation",
		"#documentation",
	}

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}

	if strings.TrimSpace(content) == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}
