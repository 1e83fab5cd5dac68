// Package parser fetches a web page and extracts the context the content
// generators put into their prompts: title, meta description, headings and
// visible text.
package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// DefaultMaxTextLength bounds PageContext.Text so prompts stay small
const DefaultMaxTextLength = 4000

// ErrInvalidURL is returned for URLs without a host
var ErrInvalidURL = errors.New("invalid page URL")

// PageContext is the prompt-relevant content of a page
type PageContext struct {
	URL         string            `json:"url"`
	StatusCode  int               `json:"status_code"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Keywords    string            `json:"keywords"`
	Language    string            `json:"language"`
	H1          []string          `json:"h1"`
	H2          []string          `json:"h2"`
	H3          []string          `json:"h3"`
	MetaTags    map[string]string `json:"meta_tags"`
	Text        string            `json:"text"`
	LoadTime    time.Duration     `json:"load_time"`
}

// Options customize fetching
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxTextLength int
	// Transport overrides the HTTP transport, mostly for tests
	Transport http.RoundTripper
}

// DefaultOptions returns the default fetch options
func DefaultOptions() Options {
	return Options{
		Timeout:       15 * time.Second,
		UserAgent:     "Mozilla/5.0 (compatible; ContentStudio/1.0)",
		MaxTextLength: DefaultMaxTextLength,
	}
}

// Fetcher loads pages with colly
type Fetcher struct {
	opts Options
}

// NewFetcher creates a fetcher; zero option fields take their defaults
func NewFetcher(opts Options) *Fetcher {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = defaults.MaxTextLength
	}
	return &Fetcher{opts: opts}
}

// NormalizeURL adds an https scheme when none is given and checks there is a host
func NormalizeURL(raw string) (string, *url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Hostname() == "" {
		return "", nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	return raw, parsed, nil
}

// Fetch visits targetURL once and extracts its context. The request is bounded
// by the fetcher timeout or the context deadline, whichever is sooner.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*PageContext, error) {
	targetURL, parsedURL, err := NormalizeURL(targetURL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := f.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	page := &PageContext{URL: targetURL, MetaTags: make(map[string]string)}

	c := colly.NewCollector(
		colly.AllowedDomains(parsedURL.Hostname()),
		colly.MaxDepth(1),
		colly.UserAgent(f.opts.UserAgent),
	)
	c.SetRequestTimeout(timeout)
	if f.opts.Transport != nil {
		c.WithTransport(f.opts.Transport)
	}

	startTime := time.Now()
	var extractErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.LoadTime = time.Since(startTime)
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		extractErr = extract(page, e.DOM, f.opts.MaxTextLength)
	})

	c.OnError(func(r *colly.Response, err error) {
		page.StatusCode = r.StatusCode
	})

	if err := c.Visit(targetURL); err != nil {
		if page.StatusCode != 0 {
			return nil, fmt.Errorf("fetch %s: %d %s", targetURL, page.StatusCode, http.StatusText(page.StatusCode))
		}
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	if extractErr != nil {
		return nil, extractErr
	}
	return page, nil
}

// ParseHTML extracts the context of an already downloaded document
func ParseHTML(pageURL, html string, maxTextLength int) (*PageContext, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}
	page := &PageContext{URL: pageURL, MetaTags: make(map[string]string)}
	if err := extract(page, doc.Selection, maxTextLength); err != nil {
		return nil, err
	}
	return page, nil
}

func extract(page *PageContext, doc *goquery.Selection, maxTextLength int) error {
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.Language, _ = doc.Find("html").Attr("lang")
	if page.Language == "" {
		page.Language, _ = doc.Attr("lang")
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name == "" || content == "" {
			return
		}
		page.MetaTags[name] = content
		switch strings.ToLower(name) {
		case "description":
			page.Description = content
		case "keywords":
			page.Keywords = content
		}
	})

	page.H1 = headings(doc, "h1")
	page.H2 = headings(doc, "h2")
	page.H3 = headings(doc, "h3")

	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		body = doc.Clone()
	}
	body.Find("script, style, noscript, template").Remove()
	page.Text = truncate(strings.Join(strings.Fields(body.Text()), " "), maxTextLength)
	return nil
}

func headings(doc *goquery.Selection, tag string) []string {
	var out []string
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Summary renders the page as a plain-text block for prompts
func (p *PageContext) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", p.URL)
	if p.Title != "" {
		fmt.Fprintf(&b, "Current title: %s\n", p.Title)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Current meta description: %s\n", p.Description)
	}
	if p.Keywords != "" {
		fmt.Fprintf(&b, "Meta keywords: %s\n", p.Keywords)
	}
	if len(p.H1) > 0 {
		fmt.Fprintf(&b, "H1: %s\n", strings.Join(p.H1, " | "))
	}
	if len(p.H2) > 0 {
		fmt.Fprintf(&b, "H2: %s\n", strings.Join(p.H2, " | "))
	}
	if p.Text != "" {
		fmt.Fprintf(&b, "Page text excerpt: %s\n", truncate(p.Text, 1500))
	}
	return strings.TrimRight(b.String(), "\n")
}
