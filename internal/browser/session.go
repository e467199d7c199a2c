package browser

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/amirrezavafa/Digistyle-crawler/internal/crawler"

	"github.com/playwright-community/playwright-go"
)

const (
	cardSelector     = ".cp-card--product-card"
	cardLinkSelector = ".c-product-card__image-container"
	productIDAttr    = "data-product-id"
)

// attrTimeoutMs bounds per-card attribute lookups so one broken card cannot
// stall a scan pass for the full page timeout.
const attrTimeoutMs = 5000

type session struct {
	page playwright.Page
}

func (s *session) Navigate(pageURL string) error {
	_, err := s.page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return &SessionError{Op: "navigate", Err: err}
	}
	return nil
}

func (s *session) ScrollToBottom() error {
	if _, err := s.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return &SessionError{Op: "scroll", Err: err}
	}
	return nil
}

func (s *session) ContentExtent() (float64, error) {
	result, err := s.page.Evaluate("document.body.scrollHeight")
	if err != nil {
		return 0, &SessionError{Op: "read content extent", Err: err}
	}

	extent, ok := toFloat(result)
	if !ok {
		return 0, &SessionError{Op: "read content extent", Err: fmt.Errorf("unexpected scroll height value %v", result)}
	}
	return extent, nil
}

func (s *session) Cards() ([]crawler.Card, error) {
	locators, err := s.page.Locator(cardSelector).All()
	if err != nil {
		return nil, &SessionError{Op: "scan cards", Err: err}
	}

	cards := make([]crawler.Card, 0, len(locators))
	for _, locator := range locators {
		cards = append(cards, &card{locator: locator, pageURL: s.page.URL()})
	}
	return cards, nil
}

func (s *session) Close() error {
	if err := s.page.Close(); err != nil {
		return &SessionError{Op: "close page", Err: err}
	}
	return nil
}

type card struct {
	locator playwright.Locator
	pageURL string
}

func (c *card) ProductID() (string, error) {
	id, err := c.locator.GetAttribute(productIDAttr, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(attrTimeoutMs),
	})
	if err != nil {
		return "", &SessionError{Op: "read product id", Err: err}
	}
	return id, nil
}

func (c *card) DetailURL() (string, error) {
	href, err := c.locator.Locator(cardLinkSelector).First().GetAttribute("href", playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(attrTimeoutMs),
	})
	if err != nil {
		return "", &SessionError{Op: "read card link", Err: err}
	}
	if href == "" {
		return "", &SessionError{Op: "read card link", Err: errors.New("link has no href")}
	}

	return resolveURL(c.pageURL, href), nil
}

// resolveURL turns the raw href attribute into the absolute URL the browser
// itself would navigate to.
func resolveURL(pageURL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}

func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
