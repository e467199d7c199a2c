package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/amirrezavafa/Digistyle-crawler/internal/assets"
	"github.com/amirrezavafa/Digistyle-crawler/internal/browser"
	"github.com/amirrezavafa/Digistyle-crawler/internal/client"
	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/crawler"
	"github.com/amirrezavafa/Digistyle-crawler/internal/proxy"
	"github.com/amirrezavafa/Digistyle-crawler/internal/repository"
	"github.com/amirrezavafa/Digistyle-crawler/internal/service"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.DigistyleClient
	Repository repository.ProductRepository
	Enumerator *crawler.Enumerator

	Service *service.Service

	db      *sql.DB
	browser *browser.Browser
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	// Initialize ProxySupplier
	proxySupplier := proxy.NewProxySupplier(context.Background(), cfg.Site.Proxies, cfg.Site.BaseURL)

	digistyleClient := client.NewDigistyleClient(cfg.Site, proxySupplier)
	container.Client = digistyleClient

	// Opening is lazy, so no database file appears before the operator
	// confirms the crawl.
	db, err := repository.OpenDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open product store: %w", err)
	}
	container.db = db
	container.Repository = repository.NewProductRepository(db)

	// Initialize browser-backed enumerator
	b, err := browser.New(cfg.Browser)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	container.browser = b
	container.Enumerator = crawler.NewEnumerator(b, cfg.Crawler)

	container.Service = service.NewService(
		container.Repository,
		digistyleClient,
		container.Enumerator,
		assets.NewWriter(cfg.Assets.Dir),
		service.NewTerminalConfirmer(os.Stdin, os.Stdout),
		os.Stdout,
		cfg.Crawler,
	)

	return container, nil
}

// Run executes one full crawl
func (c *Container) Run(ctx context.Context) error {
	return c.Service.Run(ctx)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			log.Errorf("❌ Failed to close browser: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}
