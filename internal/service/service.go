package service

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/amirrezavafa/Digistyle-crawler/internal/assets"
	"github.com/amirrezavafa/Digistyle-crawler/internal/client"
	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"
	"github.com/amirrezavafa/Digistyle-crawler/internal/repository"
)

// State tracks where a crawl sits in its lifecycle. A run only moves past
// AwaitingConfirmation once the operator approves the displayed categories.
type State string

const (
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateRunning              State = "running"
	StateAborted              State = "aborted"
)

// Enumerator walks a category listing page and collects product references
// up to the configured limit.
type Enumerator interface {
	Enumerate(ctx context.Context, categoryURL, categoryLabel string, limit int) ([]domain.Listing, error)
}

// Service drives the whole crawl: category discovery, operator confirmation,
// product enumeration, detail extraction and persistence.
type Service struct {
	repository repository.ProductRepository
	client     client.DigistyleClient
	enumerator Enumerator
	writer     *assets.Writer
	confirmer  Confirmer
	out        io.Writer
	cfg        config.CrawlerConfig

	state State
}

func NewService(
	repository repository.ProductRepository,
	client client.DigistyleClient,
	enumerator Enumerator,
	writer *assets.Writer,
	confirmer Confirmer,
	out io.Writer,
	cfg config.CrawlerConfig,
) *Service {
	return &Service{
		repository: repository,
		client:     client,
		enumerator: enumerator,
		writer:     writer,
		confirmer:  confirmer,
		out:        out,
		cfg:        cfg,
		state:      StateAwaitingConfirmation,
	}
}

// State reports the current lifecycle state.
func (s *Service) State() State {
	return s.state
}

// Run executes the full pipeline. Until the operator confirms, nothing is
// written anywhere: no database file, no asset directories. A declined
// confirmation leaves the state Aborted and returns nil.
func (s *Service) Run(ctx context.Context) error {
	tree, err := s.client.GetCategoryTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover categories: %w", err)
	}

	DisplayTree(s.out, tree)

	if !s.confirmer.Confirm("Do you want to start crawling these categories? (yes/no): ") {
		s.state = StateAborted
		fmt.Fprintln(s.out, "Aborting crawler.")
		return nil
	}
	s.state = StateRunning

	// The products table is rebuilt once per confirmed run, so each run
	// starts from an empty table while categories accumulate across runs.
	if err := s.repository.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare the product store: %w", err)
	}

	tree.Walk(func(main, sub string, leaf domain.LeafCategory) {
		s.crawlCategory(ctx, main, sub, leaf)
	})

	total, err := s.repository.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stored products: %w", err)
	}

	log.Infof("✅ Crawl complete: %d products stored", total)

	return nil
}

// crawlCategory handles one leaf category end to end. Failures inside it
// never abort the run: enumeration errors keep whatever listings were
// collected before the failure, and a broken product is logged and skipped.
func (s *Service) crawlCategory(ctx context.Context, main, sub string, leaf domain.LeafCategory) {
	if err := s.repository.SaveCategory(ctx, main, sub, leaf.URL); err != nil {
		log.Errorf("❌ Failed to save category %s > %s: %v", main, sub, err)
	}

	label := fmt.Sprintf("%s > %s > %s", main, sub, leaf.Name)
	log.Infof("Crawling products for %s...", label)

	listings, err := s.enumerator.Enumerate(ctx, leaf.URL, label, s.cfg.ProductsPerSubcategory)
	if err != nil {
		log.Errorf("❌ Enumeration stopped early for %s: %v", label, err)
	}

	for _, listing := range listings {
		if err := s.processListing(ctx, main, sub, leaf.Name, listing); err != nil {
			log.Errorf("❌ Error processing product %s: %v", listing.ProductID, err)
		}
	}

	log.Infof("Finished crawling %d products for %s.", len(listings), leaf.Name)
}

// processListing turns one enumerated listing into a stored record: fetch
// the detail page, download the gallery, write the JSON document and insert
// the row.
func (s *Service) processListing(ctx context.Context, main, sub, nested string, listing domain.Listing) error {
	details, err := s.client.GetProductDetails(ctx, listing.DetailURL)
	if err != nil {
		return err
	}

	record := domain.NewRecord(main, sub, nested, listing, *details)
	record.Images = s.downloadImages(ctx, main, sub, nested, listing.ProductID, details.ImageURLs)

	// The document records its own location, so the path is fixed before
	// the file is written.
	record.JSONPath = s.writer.DocumentPath(main, sub, nested, listing.ProductID)

	if _, err := s.writer.WriteDocument(&record); err != nil {
		return err
	}

	inserted, err := s.repository.SaveProduct(ctx, &record)
	if err != nil {
		return err
	}
	if !inserted {
		log.Debugf("Product %s already stored, row left untouched", listing.ProductID)
	}

	return nil
}

// downloadImages fetches the gallery one image at a time and returns the
// paths that made it to disk. File names keep each image's gallery
// position, so a failed download leaves a hole in the numbering instead of
// shifting the images after it.
func (s *Service) downloadImages(ctx context.Context, main, sub, nested, productID string, urls []string) []string {
	paths := make([]string, 0, len(urls))

	for i, imageURL := range urls {
		// An empty slot is a gallery marker that had no source; it keeps
		// its position but there is nothing to fetch.
		if imageURL == "" {
			continue
		}

		data, err := s.client.DownloadImage(ctx, imageURL)
		if err != nil {
			log.Warnf("Failed to download image: %s. Error: %v", imageURL, err)
			continue
		}

		path, err := s.writer.SaveImage(main, sub, nested, productID, i+1, data)
		if err != nil {
			log.Warnf("Failed to save image: %s. Error: %v", imageURL, err)
			continue
		}

		log.Infof("Image saved: %s", path)
		paths = append(paths, path)
	}

	return paths
}
