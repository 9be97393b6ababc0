package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeConfig tunes the headless Chrome used for PDF output.
type ChromeConfig struct {
	// ExecPath overrides Chrome discovery (CHROME_PATH).
	ExecPath string

	// Timeout bounds one render, browser start included.
	Timeout time.Duration

	// MaxConcurrent is how many tabs may print at once.
	MaxConcurrent int
}

func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		Timeout:       60 * time.Second,
		MaxConcurrent: 2,
	}
}

var _ Renderer = (*ChromeRenderer)(nil)

var errRendererClosed = errors.New("resume: chrome renderer closed")

// browser is one running Chrome: the context tabs are opened from and the
// two cancel funcs that stop it.
type browser struct {
	ctx         context.Context
	stop        context.CancelFunc
	cancelAlloc context.CancelFunc
}

func (b *browser) shutdown() {
	b.stop()
	b.cancelAlloc()
}

// ChromeRenderer keeps one headless browser for the life of the process and
// opens a tab per render.
//
// The browser starts on first use rather than at boot, so a server with
// RESUME_PDF on but Chrome missing still serves everything else. A failed
// launch is not remembered: the next render tries again, which covers a
// Chrome that was slow to become available. mu guards the browser for
// both start and Close.
type ChromeRenderer struct {
	config ChromeConfig
	logger *slog.Logger
	slots  chan struct{}
	launch func(ChromeConfig) (*browser, error)

	mu      sync.Mutex
	running *browser
	closed  bool
}

func NewChromeRenderer(cfg ChromeConfig, logger *slog.Logger) *ChromeRenderer {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultChromeConfig().Timeout
	}
	return &ChromeRenderer{
		config: cfg,
		logger: logger,
		slots:  make(chan struct{}, cfg.MaxConcurrent),
		launch: launchChrome,
	}
}

func launchChrome(cfg ChromeConfig) (*browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, stop := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		stop()
		cancelAlloc()
		return nil, fmt.Errorf("resume: starting chrome: %w", err)
	}
	return &browser{ctx: browserCtx, stop: stop, cancelAlloc: cancelAlloc}, nil
}

// browserContext returns the running browser's context, launching Chrome
// if it is not up yet.
func (r *ChromeRenderer) browserContext() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errRendererClosed
	}
	if r.running != nil {
		if r.running.ctx.Err() == nil {
			return r.running.ctx, nil
		}
		// Chrome went away underneath us; start a new one.
		r.running.shutdown()
		r.running = nil
	}

	b, err := r.launch(r.config)
	if err != nil {
		r.logger.Warn("headless chrome failed to start", slog.String("error", err.Error()))
		return nil, err
	}
	r.running = b
	r.logger.Info("headless chrome started")
	return b.ctx, nil
}

// RenderPDF loads html into a fresh tab and prints it on A4.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	browserCtx, err := r.browserContext()
	if err != nil {
		return nil, err
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, r.config.Timeout)
	defer cancel()

	// Cancel the tab when the request goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 is 8.27in x 11.69in.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("resume: chrome print: %w", err)
	}
	return pdf, nil
}

// Close shuts the browser down and makes later renders fail. Safe to call
// when the browser never started, and more than once.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.running != nil {
		r.running.shutdown()
		r.running = nil
		r.logger.Info("headless chrome stopped")
	}
	return nil
}
