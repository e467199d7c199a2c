package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"
	"github.com/amirrezavafa/Digistyle-crawler/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type DigistyleClient interface {
	GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error)
	GetProductDetails(ctx context.Context, detailURL string) (*domain.ProductDetails, error)
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

type digistyleClient struct {
	rl            ratelimit.Limiter
	config        config.SiteConfig
	baseURL       string
	httpClient    *resty.Client
	parser        *siteParser
	proxySupplier proxy.ProxySupplier
}

func NewDigistyleClient(cfg config.SiteConfig, proxySupplier proxy.ProxySupplier) DigistyleClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.5").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	// Get initial proxy
	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	return &digistyleClient{
		rl:            ratelimit.New(cfg.MaxRequestsPerSecond),
		config:        cfg,
		baseURL:       cfg.BaseURL,
		httpClient:    client,
		parser:        newSiteParser(cfg.BaseURL),
		proxySupplier: proxySupplier,
	}
}

func (c *digistyleClient) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	html, err := c.fetchHTML(ctx, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for storefront navigation: %w", err)
	}

	tree, err := c.parser.ParseCategoryTree(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category tree: %w", err)
	}

	log.Debugf("Discovered %d leaf categories", tree.LeafCount())
	return tree, nil
}

func (c *digistyleClient) GetProductDetails(ctx context.Context, detailURL string) (*domain.ProductDetails, error) {
	html, err := c.fetchHTML(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for product page: %w", err)
	}

	details, err := c.parser.ParseProductDetails(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	log.Debugf("Successfully fetched and parsed product page %s", detailURL)
	return details, nil
}

func (c *digistyleClient) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := c.doGet(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	return resp.Bytes(), nil
}

func (c *digistyleClient) fetchHTML(ctx context.Context, url string) (string, error) {
	resp, err := c.doGet(ctx, url)
	if err != nil {
		return "", err
	}

	return resp.String(), nil
}

func (c *digistyleClient) doGet(ctx context.Context, url string) (*resty.Response, error) {
	c.rl.Take()

	// Leave headroom for resty's retry backoff on top of the per-attempt timeout
	reqCtx, cancel := context.WithTimeout(ctx, 3*time.Duration(c.config.Timeout)*time.Second)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, &RetrievalError{URL: url, Err: err}
	}

	if resp.IsError() {
		if retried, ok := c.retryWithNextProxy(reqCtx, url, resp.StatusCode()); ok {
			return retried, nil
		}
		return nil, &RetrievalError{URL: url, StatusCode: resp.StatusCode()}
	}

	return resp, nil
}

// retryWithNextProxy rotates to the next configured proxy when the site
// starts refusing requests, and retries the blocked URL once.
func (c *digistyleClient) retryWithNextProxy(ctx context.Context, url string, statusCode int) (*resty.Response, bool) {
	if statusCode != http.StatusForbidden && statusCode != http.StatusTooManyRequests {
		return nil, false
	}
	if c.proxySupplier == nil {
		return nil, false
	}

	newProxy := c.proxySupplier.Get()
	if newProxy == "" {
		return nil, false
	}

	log.Warnf("🚫 Request blocked with HTTP %d for URL: %s", statusCode, url)
	log.Infof("🔄 Switching to new proxy: %s", newProxy)
	c.httpClient.SetProxy(newProxy)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)

	if err != nil || resp.IsError() {
		log.Errorf("❌ Retry with new proxy failed for %s", url)
		return nil, false
	}

	log.Infof("✅ Retry successful with new proxy")
	return resp, true
}
