// Package fetch retrieves job postings from the web and reduces them to the
// plain text the generation workflow consumes.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the HTTP request timeout for posting fetches.
const DefaultTimeout = 30 * time.Second

const defaultUserAgent = "Mozilla/5.0 (compatible; Aria/1.0)"

// Error reports a failed posting fetch.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures posting fetches. The zero value uses defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// AllowBrowser permits a headless-browser render when plain HTTP
	// yields too little text, which usually means a JavaScript-only page.
	AllowBrowser bool
}

func (o *Options) timeout() time.Duration {
	if o == nil || o.Timeout == 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o *Options) userAgent() string {
	if o == nil || o.UserAgent == "" {
		return defaultUserAgent
	}
	return o.UserAgent
}

// Posting downloads a job posting and returns its visible text. Pages that
// render client-side are retried through a headless browser when
// opts.AllowBrowser is set.
func Posting(ctx context.Context, postingURL string, opts *Options) (string, error) {
	parsed, err := url.Parse(postingURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: postingURL, Message: "invalid URL", Cause: err}
	}

	html, err := fetchHTML(ctx, postingURL, opts)
	if err != nil {
		return "", err
	}
	text, err := PostingText(html)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "parsing HTML", Cause: err}
	}

	if needsBrowser(text) && opts != nil && opts.AllowBrowser {
		rendered, berr := renderWithBrowser(ctx, postingURL, opts.timeout())
		if berr != nil {
			return "", &Error{URL: postingURL, Message: "browser rendering", Cause: berr}
		}
		text, err = PostingText(rendered)
		if err != nil {
			return "", &Error{URL: postingURL, Message: "parsing rendered HTML", Cause: err}
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: postingURL, Message: "no readable content"}
	}
	return text, nil
}

func fetchHTML(ctx context.Context, postingURL string, opts *Options) (string, error) {
	client := &http.Client{Timeout: opts.timeout()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postingURL, nil)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "building request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.userAgent())

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: postingURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "reading response", Cause: err}
	}
	return string(body), nil
}

// postingSelectors are tried in order; job boards commonly wrap the
// description in one of these before falling back to generic containers.
var postingSelectors = []string{
	".job-description",
	"#job-description",
	".job-details",
	"[data-testid='jobDescriptionText']",
	"main",
	"article",
	".content",
	"#content",
}

// PostingText extracts the readable posting text from an HTML document.
func PostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("nav, footer, header, script, style, noscript, iframe, .cookie-banner, .sidebar").Remove()

	content := doc.Find("body")
	for _, selector := range postingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	return cleanWhitespace(content.Text()), nil
}

var (
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
