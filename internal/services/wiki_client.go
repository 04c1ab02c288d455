package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"leon/internal/health"
)

// WikiSearchResult is one hit of a title search
type WikiSearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"` // Plain text, HTML stripped
	PageID  int    `json:"pageid"`
}

// WikiSummary is the lead section of a page
type WikiSummary struct {
	Type    string `json:"type"` // "standard", "disambiguation", ...
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Lang    string `json:"lang"`
	URL     string `json:"url,omitempty"`
}

// IsDisambiguation reports whether the page lists several meanings
func (s *WikiSummary) IsDisambiguation() bool {
	return s.Type == "disambiguation"
}

// DefaultWikiUserAgent is sent until SetUserAgent is called. Wikimedia asks
// operators to add a contact URL or email address (WIKI_USER_AGENT).
const DefaultWikiUserAgent = "LeonBot/1.0"

// WikiClient queries MediaWiki editions over their public HTTP APIs
type WikiClient struct {
	httpClient      *http.Client
	userAgent       string
	baseURLTemplate string
	limiter         *OutboundLimiter
	cache           LookupCache
	cacheTTL        time.Duration
	health          *health.Service
}

// NewWikiClient creates a new client. baseURLTemplate contains %s for the
// language code, e.g. "https://%s.wikipedia.org". limiter and cache may be nil.
func NewWikiClient(baseURLTemplate string, timeout time.Duration, limiter *OutboundLimiter, cache LookupCache, cacheTTL time.Duration) *WikiClient {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &WikiClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgent:       DefaultWikiUserAgent,
		baseURLTemplate: strings.TrimRight(baseURLTemplate, "/"),
		limiter:         limiter,
		cache:           cache,
		cacheTTL:        cacheTTL,
	}
}

type searchResponse struct {
	Query struct {
		Search []WikiSearchResult `json:"search"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Lang        string `json:"lang"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Search looks up pages whose title matches query. When no title matches,
// it retries as a full-text search.
func (c *WikiClient) Search(ctx context.Context, lang, query string, limit int) ([]WikiSearchResult, error) {
	cacheKey := "wiki:search:" + lang + ":" + query
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var results []WikiSearchResult
		if err := json.Unmarshal(cached, &results); err == nil {
			return results, nil
		}
	}

	// Quoted so that every word of a multi-word topic is matched against the title
	results, err := c.search(ctx, lang, `intitle:"`+strings.ReplaceAll(query, `"`, "")+`"`, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		if results, err = c.search(ctx, lang, query, limit); err != nil {
			return nil, err
		}
	}

	if data, err := json.Marshal(results); err == nil {
		c.cacheSet(ctx, cacheKey, data)
	}
	return results, nil
}

func (c *WikiClient) search(ctx context.Context, lang, srsearch string, limit int) ([]WikiSearchResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", srsearch)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL(lang)+"/w/api.php?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wiki search failed: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	results := make([]WikiSearchResult, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		r.Snippet = stripHTML(r.Snippet)
		results = append(results, r)
	}
	return results, nil
}

// Summary fetches the lead extract of the page titled title
func (c *WikiClient) Summary(ctx context.Context, lang, title string) (*WikiSummary, error) {
	cacheKey := "wiki:summary:" + lang + ":" + title
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		var summary WikiSummary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
	}

	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	var resp summaryResponse
	if err := c.getJSON(ctx, c.baseURL(lang)+"/api/rest_v1/page/summary/"+path, &resp); err != nil {
		return nil, err
	}

	summary := &WikiSummary{
		Type:    resp.Type,
		Title:   resp.Title,
		Extract: strings.TrimSpace(resp.Extract),
		Lang:    resp.Lang,
		URL:     resp.ContentURLs.Desktop.Page,
	}
	if summary.Lang == "" {
		summary.Lang = lang
	}

	if data, err := json.Marshal(summary); err == nil {
		c.cacheSet(ctx, cacheKey, data)
	}
	return summary, nil
}

// SetUserAgent replaces the User-Agent header; blank values are ignored
func (c *WikiClient) SetUserAgent(userAgent string) {
	if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
		c.userAgent = userAgent
	}
}

// SetHealth enables failure tracking and short-circuiting per wiki host
func (c *WikiClient) SetHealth(h *health.Service) {
	c.health = h
}

func (c *WikiClient) baseURL(lang string) string {
	if strings.Contains(c.baseURLTemplate, "%s") {
		return fmt.Sprintf(c.baseURLTemplate, lang)
	}
	return c.baseURLTemplate
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
// A 404 maps to ErrTopicNotFound.
func (c *WikiClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	dependency := "wiki:" + req.URL.Host
	if !c.health.IsAvailable(dependency) {
		return health.UnavailableError(dependency)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.health.MarkUnhealthy(dependency, err.Error(), 0)
		}
		return fmt.Errorf("wiki request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.health.MarkHealthy(dependency)
		return fmt.Errorf("%w: %s", ErrTopicNotFound, req.URL.Path)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		message := strings.TrimSpace(string(body))
		c.health.MarkUnhealthy(dependency, message, resp.StatusCode)
		return fmt.Errorf("wiki returned status %d: %s", resp.StatusCode, message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.health.MarkUnhealthy(dependency, err.Error(), resp.StatusCode)
		return fmt.Errorf("failed to decode wiki response: %w", err)
	}

	c.health.MarkHealthy(dependency)
	return nil
}

func (c *WikiClient) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx, key)
}

func (c *WikiClient) cacheSet(ctx context.Context, key string, value []byte) {
	if c.cache == nil {
		return
	}
	c.cache.Set(ctx, key, value, c.cacheTTL)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML turns a search snippet (with <span class="searchmatch"> markup) into text
func stripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagPattern.ReplaceAllString(s, "")))
}
