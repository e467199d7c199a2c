package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProxySupplier hands out proxy URLs in round-robin order. An empty pool is
// valid: Get returns "" and callers fall back to direct connections.
type ProxySupplier interface {
	Get() string
}

type roundRobinSupplier struct {
	mu   sync.Mutex
	urls []string
	next int
}

// NewProxySupplier probes every configured proxy against testURL and keeps
// only the ones that answer. Probes run in parallel so a startup with a
// large pool of dead proxies does not stall the crawl.
func NewProxySupplier(ctx context.Context, urls []string, testURL string) ProxySupplier {
	if len(urls) == 0 {
		return &roundRobinSupplier{urls: []string{}}
	}

	log.Infof("🔄 Testing %d proxies...", len(urls))

	working := make(chan string, len(urls))

	g := new(errgroup.Group)
	g.SetLimit(10)

	for _, proxyURL := range urls {
		g.Go(func() error {
			if !probeProxy(ctx, proxyURL, testURL) {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
				return nil
			}

			log.Infof("✅ Proxy %s is working", proxyURL)
			working <- proxyURL
			return nil
		})
	}

	g.Wait()
	close(working)

	alive := make([]string, 0, len(urls))
	for proxyURL := range working {
		alive = append(alive, proxyURL)
	}

	log.Infof("✅ Proxy pool ready with %d working proxies out of %d tested", len(alive), len(urls))

	return &roundRobinSupplier{urls: alive}
}

func (s *roundRobinSupplier) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.urls) == 0 {
		return ""
	}

	proxyURL := s.urls[s.next]
	s.next = (s.next + 1) % len(s.urls)

	return proxyURL
}

func probeProxy(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)

	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	return !resp.IsError()
}
