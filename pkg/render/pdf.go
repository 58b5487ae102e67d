package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 paper size in inches, the fixed export format.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// PDFEngine renders already-sanitized HTML into a paginated PDF document.
// The engine is an external collaborator; its failures propagate to the
// caller and nothing is cached, every export re-renders.
type PDFEngine interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePDFEngine drives a headless Chrome process over the DevTools
// protocol. One browser allocator is shared, each render gets its own tab.
type ChromePDFEngine struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

func NewChromePDFEngine(timeout time.Duration) *ChromePDFEngine {
	allocCtx, cancel := chromedp.NewExecAllocator(
		context.Background(),
		chromedp.DefaultExecAllocatorOptions[:]...,
	)
	return &ChromePDFEngine{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
	}
}

func (e *ChromePDFEngine) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tab contexts must descend from the allocator, so the request context
	// only gates entry; the render itself is bounded by the engine timeout.
	tabCtx, cancelTab := chromedp.NewContext(e.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, e.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}
	return pdf, nil
}

// Close shuts down the shared browser allocator.
func (e *ChromePDFEngine) Close() {
	e.cancel()
}
