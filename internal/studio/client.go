// Package studio drives the remote video-authoring web app through a real
// browser. There is no documented API: every operation is a best-effort DOM
// heuristic against the rendered page, so callers treat failures as
// per-scene errors, never as fatal.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

type Options struct {
	ProfileDir  string
	DownloadDir string
	BaseURL     string
	Headless    bool
}

// Client owns one persistent-profile browser session. All interactions are
// strictly sequential on the single page the session opens.
type Client struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	baseURL     string
	logger      *slog.Logger
}

// Launch starts the browser against an existing logged-in profile and routes
// downloads into the output directory. The profile must have been created by
// the profile command first; without it the remote app would show a login
// wall the automation cannot pass.
func Launch(parent context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(opts.ProfileDir); err != nil {
		return nil, fmt.Errorf("browser profile %s not found (run the profile command first): %w", opts.ProfileDir, err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(opts.ProfileDir),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	c := &Client{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		baseURL:     strings.TrimSpace(opts.BaseURL),
		logger:      logger,
	}
	if c.baseURL == "" {
		c.baseURL = "https://www.heygen.com/"
	}

	err := chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir).
			WithEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(ratingWatchdogJS).Do(ctx)
			return err
		}),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("launch browser session: %w", err)
	}
	return c, nil
}

// LaunchForLogin opens a visible session on the sign-in page so the user can
// authenticate once; the profile directory persists the result.
func LaunchForLogin(parent context.Context, profileDir, baseURL string) (*Client, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory %s: %w", profileDir, err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	c := &Client{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		baseURL:     strings.TrimSpace(baseURL),
		logger:      slog.Default(),
	}
	if c.baseURL == "" {
		c.baseURL = "https://www.heygen.com/"
	}
	if err := chromedp.Run(ctx, chromedp.Navigate(c.baseURL)); err != nil {
		c.Close()
		return nil, fmt.Errorf("open login page: %w", err)
	}
	return c, nil
}

// Wait blocks until the session's context ends (browser closed or parent
// cancelled). Used by the profile command to keep the window open.
func (c *Client) Wait() {
	<-c.ctx.Done()
}

func (c *Client) Close() {
	if c.cancelCtx != nil {
		c.cancelCtx()
	}
	if c.cancelAlloc != nil {
		c.cancelAlloc()
	}
}

// OpenHome navigates to the app's landing page and settles.
func (c *Client) OpenHome() error {
	err := chromedp.Run(c.ctx,
		chromedp.Navigate(c.baseURL),
		chromedp.Sleep(3*time.Second),
	)
	if err != nil {
		return fmt.Errorf("open home page: %w", err)
	}
	c.DismissOverlays()
	return nil
}

func (c *Client) run(actions ...chromedp.Action) error {
	return chromedp.Run(c.ctx, actions...)
}

// eval runs a JS expression on the page and decodes its result into out.
// Pass nil when the result does not matter.
func (c *Client) eval(js string, out any) error {
	if out == nil {
		var discard any
		out = &discard
	}
	return chromedp.Run(c.ctx, chromedp.Evaluate(js, out))
}
