package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

type siteParser struct {
	baseURL string
}

func newSiteParser(baseURL string) *siteParser {
	return &siteParser{
		baseURL: baseURL,
	}
}

// ParseCategoryTree walks the storefront mega menu three levels deep:
// top-level section, tab group, leaf link. Nodes missing a name or a link
// are skipped so a partially rendered menu still yields a usable tree.
func (p *siteParser) ParseCategoryTree(html string) (*domain.CategoryTree, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	tree := &domain.CategoryTree{}

	doc.Find("li.c-header__supercat").Each(func(i int, section *goquery.Selection) {
		mainName := strings.TrimSpace(section.Find("a.c-header__supercat-link").First().Text())
		if mainName == "" {
			log.Debugf("Skipping unnamed top-level menu section at position %d", i)
			return
		}

		main := domain.MainCategory{Name: mainName}

		section.Find("li.c-mega-menu__tab").Each(func(j int, tab *goquery.Selection) {
			subName := strings.TrimSpace(tab.Find("div.c-mega-menu__tab-title").First().Text())
			if subName == "" {
				return
			}

			sub := domain.SubCategory{Name: subName}

			tab.Find("a.c-mega-menu__link").Each(func(k int, link *goquery.Selection) {
				leafName := strings.TrimSpace(link.Text())
				href, exists := link.Attr("href")
				if leafName == "" || !exists {
					return
				}

				sub.Leaves = append(sub.Leaves, domain.LeafCategory{
					Name: leafName,
					URL:  p.absoluteURL(href),
				})
			})

			if len(sub.Leaves) > 0 {
				main.Subs = append(main.Subs, sub)
			}
		})

		if len(main.Subs) > 0 {
			tree.Mains = append(tree.Mains, main)
		}
	})

	return tree, nil
}

func (p *siteParser) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	base, err := url.Parse(p.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
