package fetch

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Navigator renders a page the way a real browser would. It exists for the
// one provider that answers plain HTTP with a bot-detection challenge.
type Navigator interface {
	Navigate(ctx context.Context, url string) ([]byte, error)
}

// ChromeNavigator drives a headless Chrome via chromedp and returns the
// document HTML after the body is ready, i.e. after the challenge has been
// passed and the real page rendered.
type ChromeNavigator struct {
	UserAgent string
}

func (n *ChromeNavigator) Navigate(ctx context.Context, url string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if n.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(n.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("browser navigation %s: %w", url, err)
	}
	return []byte(html), nil
}
