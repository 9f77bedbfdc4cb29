package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// PlaywrightManager renders pages in headless Chromium. It satisfies
// fetch.Fetcher for sources that only serve content after scripts run.
type PlaywrightManager struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	log     *zap.Logger

	// TimeoutMs bounds navigation per page.
	TimeoutMs float64
}

func NewPlaywright(log *zap.Logger, userAgent string) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	return &PlaywrightManager{
		pw:        pw,
		browser:   browser,
		bctx:      bctx,
		log:       log.With(zap.String("component", "browser")),
		TimeoutMs: 30000,
	}, nil
}

// Fetch navigates a fresh page to url and returns the rendered HTML.
func (pm *PlaywrightManager) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	page, err := pm.bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(pm.TimeoutMs),
	})
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if resp != nil && resp.Status() != 200 {
		return "", fmt.Errorf("navigate %s: status %d", url, resp.Status())
	}

	if err := HumanScroll(page); err != nil {
		pm.log.Debug("scroll failed", zap.String("url", url), zap.Error(err))
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content %s: %w", url, err)
	}
	return html, nil
}

func (pm *PlaywrightManager) Close() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var firstErr error
	if pm.bctx != nil {
		if err := pm.bctx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
