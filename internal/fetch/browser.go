package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// minPostingLength is the shortest extracted text accepted from a plain
// HTTP fetch. Anything shorter almost always means the posting renders
// client-side.
const minPostingLength = 500

func needsBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < minPostingLength
}

// renderWithBrowser loads the page in headless Chrome and returns the
// rendered HTML. Requires a Chrome or Chromium binary on the host.
func renderWithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to fill the page in.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
