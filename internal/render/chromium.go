package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// defaultRenderTimeout bounds one render, browser startup included.
const defaultRenderTimeout = 60 * time.Second

// A4 paper size in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Chromium renders HTML to PDF with a headless Chromium instance. Each
// render launches a fresh browser so a crashed or wedged instance never
// outlives the message that hurt it.
type Chromium struct {
	// Timeout overrides the default per-render timeout when positive.
	Timeout time.Duration
	Logger  *slog.Logger
}

// RenderPDF loads the document and captures it as an A4 PDF with
// backgrounds printed. The page is delivered as a data: URL so the
// navigation's load event gates the capture, giving inline data URIs
// and live external resources a chance to load first.
func (c *Chromium) RenderPDF(ctx context.Context, htmlBody string) ([]byte, error) {
	if !strings.Contains(strings.ToLower(htmlBody), "<html") {
		htmlBody = WrapPlainText(htmlBody)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlBody))

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	c.Logger.Debug("rendered pdf", "bytes", len(pdf))
	return pdf, nil
}
