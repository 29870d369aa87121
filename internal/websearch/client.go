// Package websearch queries the DuckDuckGo HTML endpoint with a
// site-focused query and converts the results into evidence items.
// The endpoint needs no API key; results are parsed straight from the
// returned HTML.
package websearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/nomos/internal/model"
	"github.com/ppiankov/nomos/internal/util"
	"github.com/ppiankov/nomos/internal/worker"
	"golang.org/x/net/html"
)

const searchMaxAttempts = 2

// searchSleepFunc is the sleep function used between retries (injectable for tests)
var searchSleepFunc = time.Sleep

// Result is a single parsed search result
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Client performs focused web searches
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	maxResults   int
	maxBytes     int64
	focusDomains []string
	limiter      *worker.HostLimiter
	robots       *util.RobotsChecker
	authority    *AuthorityClassifier
	now          func() time.Time
}

// NewClient creates a search client from the given configuration
func NewClient(cfg *model.Config) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}
	if cfg.HTTP.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:      cfg.Search.BaseURL,
		userAgent:    cfg.HTTP.UserAgent,
		maxResults:   cfg.Search.MaxResults,
		maxBytes:     cfg.HTTP.MaxBodyBytes,
		focusDomains: cfg.Search.FocusDomains,
		limiter:      worker.NewHostLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		authority:    NewAuthorityClassifier(&cfg.Authority),
		now:          time.Now,
	}

	if c.baseURL == "" {
		c.baseURL = "https://html.duckduckgo.com/html/"
	}
	if c.maxResults <= 0 {
		c.maxResults = 5
	}
	if c.maxBytes <= 0 {
		c.maxBytes = 2_000_000
	}
	if cfg.HTTP.RespectRobots {
		c.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	return c
}

// FocusedQuery appends site: filters for the configured focus domains,
// steering results toward official sources
func (c *Client) FocusedQuery(query string) string {
	if len(c.focusDomains) == 0 {
		return query
	}

	filters := make([]string, 0, len(c.focusDomains))
	for _, domain := range c.focusDomains {
		filters = append(filters, "site:"+domain)
	}
	return query + " " + strings.Join(filters, " OR ")
}

// Search runs a focused search and returns evidence items in rank order
func (c *Client) Search(ctx context.Context, query string) ([]model.EvidenceItem, error) {
	results, err := c.RawSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	fetched := c.now()
	items := make([]model.EvidenceItem, 0, len(results))
	for _, r := range results {
		items = append(items, c.toEvidence(r, fetched))
	}

	return items, nil
}

// RawSearch performs the HTTP round trip and parses the result page
func (c *Client) RawSearch(ctx context.Context, query string) ([]Result, error) {
	searchURL := c.baseURL + "?q=" + url.QueryEscape(c.FocusedQuery(query))

	if c.robots != nil {
		allowed, crawlDelay, _ := c.robots.CanFetch(ctx, searchURL)
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows %s", c.baseURL)
		}
		// A declared crawl delay becomes the pacing for this host.
		if crawlDelay > 0 {
			if u, err := url.Parse(searchURL); err == nil {
				c.limiter.SetHostRate(u.Host, 1/crawlDelay.Seconds(), 1)
			}
		}
	}

	if err := c.limiter.Wait(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := c.fetchWithRetry(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	results := parseResults(doc)
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	return results, nil
}

// fetchWithRetry performs the GET, retrying once on transient statuses
// (429, 5xx) with exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, searchURL string) ([]byte, error) {
	var lastStatus int
	for attempt := 0; attempt < searchMaxAttempts; attempt++ {
		if attempt > 0 {
			searchSleepFunc(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		status, body, err := c.fetchPage(ctx, searchURL)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if status == http.StatusOK {
			return body, nil
		}

		lastStatus = status
		if !isRetryableStatus(status) {
			break
		}
	}

	return nil, fmt.Errorf("unexpected status: %d", lastStatus)
}

func (c *Client) fetchPage(ctx context.Context, searchURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-NZ,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// isRetryableStatus reports whether a second attempt could succeed
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// toEvidence converts a search result into an evidence item. Result
// pages rarely expose a publication date, so items carry the fetch time;
// the resolver treats that as "current as of retrieval".
func (c *Client) toEvidence(r Result, fetched time.Time) model.EvidenceItem {
	tier := c.authority.Classify(r.URL)

	content := r.Title
	if r.Snippet != "" {
		content = r.Title + ": " + r.Snippet
	}

	return model.EvidenceItem{
		Content:       content,
		SourceName:    hostOf(r.URL),
		DocumentType:  "web_result",
		Authority:     tier,
		DatePublished: fetched,
		Confidence:    confidenceForTier(tier),
		Locator:       r.URL,
		Origin:        model.SourceWebSearch,
	}
}

// confidenceForTier maps authority to a base confidence. Snippets are
// weaker evidence than curated calendar entries, so even primary sources
// stay below the knowledge base ceiling.
func confidenceForTier(tier model.AuthorityTier) float64 {
	switch tier {
	case model.TierPrimary:
		return 0.8
	case model.TierSecondary:
		return 0.65
	default:
		return 0.5
	}
}

// parseResults extracts results from the DuckDuckGo HTML page. Each
// result renders as a div.result containing an a.result__a title link
// and an a.result__snippet.
func parseResults(doc *html.Node) []Result {
	var results []Result

	divs := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			hasClass(n, "result") && !hasClass(n, "result--ad")
	})

	for _, div := range divs {
		title := findFirst(div, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a")
		})
		if title == nil {
			continue
		}

		link := unwrapRedirect(getAttribute(title, "href"))
		if link == "" {
			continue
		}

		r := Result{
			Title: extractText(title),
			URL:   link,
		}
		if r.Title == "" {
			continue
		}

		if snippet := findFirst(div, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__snippet")
		}); snippet != nil {
			r.Snippet = extractText(snippet)
		}

		results = append(results, r)
	}

	return results
}

// unwrapRedirect resolves DuckDuckGo's //duckduckgo.com/l/?uddg=...
// redirect wrapper to the target URL. Direct http(s) links pass through.
func unwrapRedirect(raw string) string {
	if strings.Contains(raw, "uddg=") {
		if strings.HasPrefix(raw, "//") {
			raw = "https:" + raw
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}

	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	return ""
}

// hostOf returns the host part of a URL without a www prefix, used as
// the source name for deduplication
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// Node helpers

func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

func getAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(extractText(c))
		buf.WriteString(" ")
	}
	return strings.TrimSpace(buf.String())
}
