package domain

// LeafCategory is the most specific catalog node; its URL is the listing page
// the enumeration loop scrolls through.
type LeafCategory struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SubCategory struct {
	Name   string         `json:"name"`
	Leaves []LeafCategory `json:"leaves"`
}

type MainCategory struct {
	Name string        `json:"name"`
	Subs []SubCategory `json:"subs"`
}

// CategoryTree holds the parsed navigation structure in document order.
// Slices rather than maps: display, persistence and crawl order all follow
// the order the storefront lists its categories in.
type CategoryTree struct {
	Mains []MainCategory `json:"mains"`
}

// Walk visits every leaf in document order, handing the visitor the owning
// main and sub category names alongside the leaf.
func (t *CategoryTree) Walk(fn func(main, sub string, leaf LeafCategory)) {
	for _, main := range t.Mains {
		for _, sub := range main.Subs {
			for _, leaf := range sub.Leaves {
				fn(main.Name, sub.Name, leaf)
			}
		}
	}
}

func (t *CategoryTree) LeafCount() int {
	count := 0
	for _, main := range t.Mains {
		for _, sub := range main.Subs {
			count += len(sub.Leaves)
		}
	}
	return count
}

func (t *CategoryTree) IsEmpty() bool {
	return t == nil || t.LeafCount() == 0
}
