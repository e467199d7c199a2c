package client

import (
	"testing"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navigationHTML = `
<html><body>
<ul>
  <li class="c-header__supercat">
    <a class="c-header__supercat-link" href="/category/women">زنانه</a>
    <ul>
      <li class="c-mega-menu__tab">
        <div class="c-mega-menu__tab-title">لباس</div>
        <a class="c-mega-menu__link" href="/search/category-women-dress/">پیراهن</a>
        <a class="c-mega-menu__link" href="https://cdn.digistyle.com/search/women-pants/">شلوار</a>
      </li>
      <li class="c-mega-menu__tab">
        <div class="c-mega-menu__tab-title">اکسسوری</div>
        <a class="c-mega-menu__link" href="/search/women-bag/">کیف</a>
      </li>
    </ul>
  </li>
  <li class="c-header__supercat">
    <a class="c-header__supercat-link" href="/category/men">مردانه</a>
    <ul>
      <li class="c-mega-menu__tab">
        <div class="c-mega-menu__tab-title">کفش</div>
        <a class="c-mega-menu__link" href="/search/men-sneakers/">اسپرت</a>
      </li>
    </ul>
  </li>
</ul>
</body></html>`

func TestParseCategoryTree(t *testing.T) {
	parser := newSiteParser("https://www.digistyle.com")

	tree, err := parser.ParseCategoryTree(navigationHTML)
	require.NoError(t, err)

	require.Len(t, tree.Mains, 2)
	assert.Equal(t, 4, tree.LeafCount())

	women := tree.Mains[0]
	assert.Equal(t, "زنانه", women.Name)
	require.Len(t, women.Subs, 2)

	clothes := women.Subs[0]
	assert.Equal(t, "لباس", clothes.Name)
	require.Len(t, clothes.Leaves, 2)
	assert.Equal(t, domain.LeafCategory{
		Name: "پیراهن",
		URL:  "https://www.digistyle.com/search/category-women-dress/",
	}, clothes.Leaves[0])
	// Absolute links pass through untouched
	assert.Equal(t, "https://cdn.digistyle.com/search/women-pants/", clothes.Leaves[1].URL)

	men := tree.Mains[1]
	assert.Equal(t, "مردانه", men.Name)
	require.Len(t, men.Subs, 1)
	assert.Equal(t, "اسپرت", men.Subs[0].Leaves[0].Name)
}

func TestParseCategoryTreeSkipsMalformedNodes(t *testing.T) {
	tests := []struct {
		name          string
		html          string
		expectedMains int
	}{
		{
			name:          "empty document",
			html:          `<html><body></body></html>`,
			expectedMains: 0,
		},
		{
			name: "section without a name is dropped",
			html: `<li class="c-header__supercat">
				<ul><li class="c-mega-menu__tab">
					<div class="c-mega-menu__tab-title">کفش</div>
					<a class="c-mega-menu__link" href="/x/">اسپرت</a>
				</li></ul>
			</li>`,
			expectedMains: 0,
		},
		{
			name: "tab without links is dropped",
			html: `<li class="c-header__supercat">
				<a class="c-header__supercat-link" href="/m">مردانه</a>
				<ul><li class="c-mega-menu__tab"><div class="c-mega-menu__tab-title">کفش</div></li></ul>
			</li>`,
			expectedMains: 0,
		},
	}

	parser := newSiteParser("https://www.digistyle.com")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parser.ParseCategoryTree(tt.html)
			require.NoError(t, err)
			assert.Len(t, tree.Mains, tt.expectedMains)
		})
	}
}

func TestParseCategoryTreeKeepsSiblingsOfLinkWithoutHref(t *testing.T) {
	// Tab items must nest under a ul as in the live menu; an li outside
	// list context gets hoisted out of its section by the HTML parser.
	html := `<li class="c-header__supercat">
		<a class="c-header__supercat-link" href="/m">مردانه</a>
		<ul><li class="c-mega-menu__tab">
			<div class="c-mega-menu__tab-title">کفش</div>
			<a class="c-mega-menu__link">بدون لینک</a>
			<a class="c-mega-menu__link" href="/search/men-boots/">بوت</a>
		</li></ul>
	</li>`

	parser := newSiteParser("https://www.digistyle.com")

	tree, err := parser.ParseCategoryTree(html)
	require.NoError(t, err)

	require.Len(t, tree.Mains, 1)
	require.Len(t, tree.Mains[0].Subs, 1)

	shoes := tree.Mains[0].Subs[0]
	assert.Equal(t, "کفش", shoes.Name)
	require.Len(t, shoes.Leaves, 1)
	assert.Equal(t, domain.LeafCategory{
		Name: "بوت",
		URL:  "https://www.digistyle.com/search/men-boots/",
	}, shoes.Leaves[0])
}

func TestAbsoluteURL(t *testing.T) {
	parser := newSiteParser("https://www.digistyle.com")

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"rooted path", "/search/women-dress/", "https://www.digistyle.com/search/women-dress/"},
		{"already absolute", "https://cdn.digistyle.com/a.jpg", "https://cdn.digistyle.com/a.jpg"},
		{"protocol relative", "//cdn.digistyle.com/a.jpg", "https://cdn.digistyle.com/a.jpg"},
		{"surrounding whitespace", "  /search/x/  ", "https://www.digistyle.com/search/x/"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.absoluteURL(tt.href))
		})
	}
}
