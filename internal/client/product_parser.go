package client

import (
	"fmt"
	"strings"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// ParseProductDetails extracts every field of a product page independently.
// A missing node never fails the page: the title falls back to a sentinel,
// optional fields stay nil, lists come back empty.
func (p *siteParser) ParseProductDetails(html string) (*domain.ProductDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	details := &domain.ProductDetails{
		Title:          domain.MissingTitle,
		Specifications: domain.SpecList{},
		ImageURLs:      []string{},
	}

	if title, ok := p.textOf(doc, "h1.c-product-page__title"); ok {
		details.Title = title
	}
	if subtitle, ok := p.textOf(doc, "h3.c-product-page__features-subtitle"); ok {
		details.Subtitle = &subtitle
	}
	if price, ok := p.textOf(doc, "div.c-product-page__selling-price.js-selling-price"); ok {
		details.Price = &price
	}
	if oldPrice, ok := p.textOf(doc, "del.c-product-page__rrp-price.js-rrp-price"); ok {
		details.OldPrice = &oldPrice
	}
	if discount, ok := p.textOf(doc, "span.js-discount-percent-value"); ok {
		details.Discount = &discount
	}
	if description, ok := p.textOf(doc, "div.c-product-page__features-description"); ok {
		details.Description = &description
	}
	if additional, ok := p.textOf(doc, "div.c-product-page__features-content"); ok {
		details.AdditionalDetails = &additional
	}

	details.Specifications = p.extractSpecifications(doc)
	details.ImageURLs = p.extractImageURLs(doc)

	return details, nil
}

// textOf reports whether the selector matched at all; a matched node with
// empty text is a present field, not a missing one.
func (p *siteParser) textOf(doc *goquery.Document, selector string) (string, bool) {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(node.Text()), true
}

func (p *siteParser) extractSpecifications(doc *goquery.Document) domain.SpecList {
	specs := domain.SpecList{}

	doc.Find("ul.c-product__specs-table li.c-product__specs-table-item").Each(func(i int, item *goquery.Selection) {
		labelNode := item.Find("div.c-product__specs-table-item-title").First()
		if labelNode.Length() == 0 {
			return
		}
		label := strings.TrimSpace(labelNode.Text())

		values := make([]string, 0)
		item.Find("div.c-product__specs-table-value").Each(func(j int, value *goquery.Selection) {
			values = append(values, strings.TrimSpace(value.Text()))
		})

		specs.Add(label, strings.Join(values, ", "))
	})

	return specs
}

// extractImageURLs returns one slot per gallery marker in document order. A
// marker without a source keeps an empty slot, so image numbering downstream
// follows gallery positions rather than shifting to fill the gap.
func (p *siteParser) extractImageURLs(doc *goquery.Document) []string {
	urls := make([]string, 0)

	doc.Find("img.c-product-page__gallery-image").Each(func(i int, img *goquery.Selection) {
		src, exists := img.Attr("src")
		if !exists || strings.TrimSpace(src) == "" {
			urls = append(urls, "")
			return
		}
		urls = append(urls, p.absoluteURL(src))
	})

	return urls
}
