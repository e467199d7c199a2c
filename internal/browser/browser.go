package browser

import (
	"fmt"
	"time"

	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/crawler"

	"github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const pageTimeout = 30 * time.Second

// Browser owns one Chromium process for the lifetime of a crawl and hands
// out one page per category enumeration.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

func New(cfg config.BrowserConfig) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	chromium, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--window-size=1920,1080",
			"--user-agent=" + userAgent,
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := chromium.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(userAgent),
		Locale:     playwright.String("fa-IR"),
		TimezoneId: playwright.String("Asia/Tehran"),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "fa-IR,fa;q=0.9,en;q=0.5",
		},
	})
	if err != nil {
		chromium.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	log.Infof("✅ Browser started (headless=%t)", cfg.Headless)

	return &Browser{
		pw:      pw,
		browser: chromium,
		context: context,
	}, nil
}

// NewSession opens a fresh page. The caller owns it exclusively and must
// close it before the next category is enumerated.
func (b *Browser) NewSession() (crawler.Session, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, &SessionError{Op: "open page", Err: err}
	}

	page.SetDefaultTimeout(float64(pageTimeout.Milliseconds()))

	return &session{page: page}, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}
