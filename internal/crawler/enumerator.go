package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Launcher opens stateful browsing sessions. One session is opened per leaf
// category and torn down before the next category begins.
type Launcher interface {
	NewSession() (Session, error)
}

// Session is a single browser tab pointed at a category listing page.
// ContentExtent reports the rendered page height so the enumeration loop can
// tell when scrolling stopped loading new content.
type Session interface {
	Navigate(url string) error
	ScrollToBottom() error
	ContentExtent() (float64, error)
	Cards() ([]Card, error)
	Close() error
}

// Card is one rendered product card on a listing page.
type Card interface {
	ProductID() (string, error)
	DetailURL() (string, error)
}

type Enumerator struct {
	launcher Launcher
	cfg      config.CrawlerConfig
}

func NewEnumerator(launcher Launcher, cfg config.CrawlerConfig) *Enumerator {
	return &Enumerator{
		launcher: launcher,
		cfg:      cfg,
	}
}

// Enumerate scrolls the listing page at categoryURL and collects up to limit
// distinct products. It stops early when a scroll leaves the content extent
// unchanged, when the iteration ceiling is hit, or when ctx is cancelled.
// Listings already gathered are returned even when the session fails midway.
func (e *Enumerator) Enumerate(ctx context.Context, categoryURL, categoryLabel string, limit int) ([]domain.Listing, error) {
	session, err := e.launcher.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to open browsing session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Warnf("Failed to close browsing session: %v", closeErr)
		}
	}()

	if err := session.Navigate(categoryURL); err != nil {
		return nil, fmt.Errorf("failed to open category page: %w", err)
	}

	lastExtent, err := session.ContentExtent()
	if err != nil {
		return nil, fmt.Errorf("failed to read content extent: %w", err)
	}

	seen := make(map[string]struct{})
	listings := make([]domain.Listing, 0, limit)

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return listings, err
		}
		if len(listings) >= limit {
			break
		}
		if iteration > e.cfg.MaxScrollIterations {
			log.Warnf("Reached scroll iteration ceiling (%d) for %s", e.cfg.MaxScrollIterations, categoryLabel)
			break
		}

		log.Infof("Crawling page (scroll iteration) for %s...", categoryLabel)

		if err := session.ScrollToBottom(); err != nil {
			return listings, fmt.Errorf("failed to scroll category page: %w", err)
		}
		time.Sleep(time.Duration(e.cfg.SettleDelay) * time.Second)

		extent, err := session.ContentExtent()
		if err != nil {
			return listings, fmt.Errorf("failed to read content extent: %w", err)
		}

		cards, err := session.Cards()
		if err != nil {
			return listings, fmt.Errorf("failed to scan product cards: %w", err)
		}
		log.Infof("Found %d products so far...", len(cards))

		for _, card := range cards {
			if len(listings) >= limit {
				break
			}

			listing, ok := e.inspectCard(card, seen)
			if !ok {
				continue
			}

			seen[listing.ProductID] = struct{}{}
			listings = append(listings, listing)
		}

		if extent == lastExtent {
			log.Infof("No more products to load.")
			break
		}
		lastExtent = extent
	}

	return listings, nil
}

// inspectCard pulls the identity and detail link off one card. A card that
// fails mid-inspection is skipped without being marked seen, so a later
// scan pass gets another chance at it.
func (e *Enumerator) inspectCard(card Card, seen map[string]struct{}) (domain.Listing, bool) {
	productID, err := card.ProductID()
	if err != nil {
		log.Warnf("Skipping product card: %v", err)
		return domain.Listing{}, false
	}
	if productID == "" {
		return domain.Listing{}, false
	}
	if _, dup := seen[productID]; dup {
		return domain.Listing{}, false
	}

	detailURL, err := card.DetailURL()
	if err != nil {
		log.Warnf("Skipping product card %s: %v", productID, err)
		return domain.Listing{}, false
	}

	return domain.Listing{ProductID: productID, DetailURL: detailURL}, true
}
