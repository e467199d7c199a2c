package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirrezavafa/Digistyle-crawler/internal/assets"
	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"
	"github.com/amirrezavafa/Digistyle-crawler/internal/repository"
)

type fakeClient struct {
	tree      *domain.CategoryTree
	treeErr   error
	details   map[string]*domain.ProductDetails
	detailErr map[string]error
	images    map[string][]byte
	imageErr  map[string]error

	detailCalls []string
}

func (c *fakeClient) GetCategoryTree(ctx context.Context) (*domain.CategoryTree, error) {
	if c.treeErr != nil {
		return nil, c.treeErr
	}
	return c.tree, nil
}

func (c *fakeClient) GetProductDetails(ctx context.Context, detailURL string) (*domain.ProductDetails, error) {
	c.detailCalls = append(c.detailCalls, detailURL)
	if err, ok := c.detailErr[detailURL]; ok {
		return nil, err
	}
	details, ok := c.details[detailURL]
	if !ok {
		return nil, fmt.Errorf("no details registered for %s", detailURL)
	}
	return details, nil
}

func (c *fakeClient) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err, ok := c.imageErr[imageURL]; ok {
		return nil, err
	}
	data, ok := c.images[imageURL]
	if !ok {
		return nil, fmt.Errorf("no image registered for %s", imageURL)
	}
	return data, nil
}

type enumerateCall struct {
	url   string
	label string
	limit int
}

type fakeEnumerator struct {
	listings map[string][]domain.Listing
	errs     map[string]error

	calls []enumerateCall
}

func (e *fakeEnumerator) Enumerate(ctx context.Context, categoryURL, categoryLabel string, limit int) ([]domain.Listing, error) {
	e.calls = append(e.calls, enumerateCall{url: categoryURL, label: categoryLabel, limit: limit})
	return e.listings[categoryURL], e.errs[categoryURL]
}

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fakeConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type harness struct {
	service   *Service
	confirmer *fakeConfirmer
	out       *bytes.Buffer
	db        *sql.DB
	repo      repository.ProductRepository
	dbPath    string
	assetsDir string
}

func newHarness(t *testing.T, dir string, client *fakeClient, enumerator *fakeEnumerator, confirm bool) *harness {
	t.Helper()

	dbPath := filepath.Join(dir, "products.db")
	assetsDir := filepath.Join(dir, "assets")

	db, err := repository.OpenDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewProductRepository(db)
	out := &bytes.Buffer{}
	confirmer := &fakeConfirmer{answer: confirm}

	svc := NewService(repo, client, enumerator, assets.NewWriter(assetsDir), confirmer, out, config.CrawlerConfig{
		ProductsPerSubcategory: 10,
		SettleDelay:            0,
		MaxScrollIterations:    50,
	})

	return &harness{
		service:   svc,
		confirmer: confirmer,
		out:       out,
		db:        db,
		repo:      repo,
		dbPath:    dbPath,
		assetsDir: assetsDir,
	}
}

func testTree() *domain.CategoryTree {
	return &domain.CategoryTree{
		Mains: []domain.MainCategory{{
			Name: "زنانه",
			Subs: []domain.SubCategory{{
				Name: "لباس زنانه",
				Leaves: []domain.LeafCategory{{
					Name: "پیراهن",
					URL:  "https://www.digistyle.com/category-women-dress/",
				}},
			}},
		}},
	}
}

func strPtr(s string) *string {
	return &s
}

func TestRunAbortsWithoutSideEffects(t *testing.T) {
	client := &fakeClient{tree: testTree()}
	enumerator := &fakeEnumerator{}
	h := newHarness(t, t.TempDir(), client, enumerator, false)

	err := h.service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateAborted, h.service.State())
	assert.Contains(t, h.out.String(), "Aborting crawler.")
	assert.Empty(t, enumerator.calls)
	assert.Empty(t, client.detailCalls)

	_, statErr := os.Stat(h.dbPath)
	assert.True(t, os.IsNotExist(statErr), "declined run must not create the database file")
	_, statErr = os.Stat(h.assetsDir)
	assert.True(t, os.IsNotExist(statErr), "declined run must not create the assets directory")
}

func TestRunDisplaysTreeBeforeAsking(t *testing.T) {
	h := newHarness(t, t.TempDir(), &fakeClient{tree: testTree()}, &fakeEnumerator{}, false)

	err := h.service.Run(context.Background())

	require.NoError(t, err)

	want := "Categories:\n" +
		"- زنانه:\n" +
		"  - لباس زنانه:\n" +
		"    - پیراهن (https://www.digistyle.com/category-women-dress/)\n" +
		"\n"
	assert.True(t, strings.HasPrefix(h.out.String(), want), "tree must be printed before the prompt outcome")
	assert.Equal(t, []string{"Do you want to start crawling these categories? (yes/no): "}, h.confirmer.prompts)
}

func TestRunCrawlsConfirmedCategories(t *testing.T) {
	categoryURL := "https://www.digistyle.com/category-women-dress/"
	client := &fakeClient{
		tree: testTree(),
		details: map[string]*domain.ProductDetails{
			"https://www.digistyle.com/product/dkp-101/": {
				Title:          "پیراهن نخی زنانه",
				Price:          strPtr("۱٬۲۵۰٬۰۰۰ تومان"),
				Specifications: domain.SpecList{{Label: "جنس", Value: "نخ پنبه"}},
				ImageURLs: []string{
					"https://dkstatics.digistyle.com/dkp-101/a.jpg",
					"https://dkstatics.digistyle.com/dkp-101/b.jpg",
					"https://dkstatics.digistyle.com/dkp-101/c.jpg",
				},
			},
			"https://www.digistyle.com/product/dkp-102/": {
				Title:          domain.MissingTitle,
				Specifications: domain.SpecList{},
				ImageURLs:      []string{},
			},
		},
		images: map[string][]byte{
			"https://dkstatics.digistyle.com/dkp-101/a.jpg": []byte("image-one"),
			"https://dkstatics.digistyle.com/dkp-101/c.jpg": []byte("image-three"),
		},
		imageErr: map[string]error{
			"https://dkstatics.digistyle.com/dkp-101/b.jpg": errors.New("connection reset"),
		},
	}
	enumerator := &fakeEnumerator{
		listings: map[string][]domain.Listing{
			categoryURL: {
				{ProductID: "dkp-101", DetailURL: "https://www.digistyle.com/product/dkp-101/"},
				{ProductID: "dkp-102", DetailURL: "https://www.digistyle.com/product/dkp-102/"},
			},
		},
	}
	h := newHarness(t, t.TempDir(), client, enumerator, true)

	err := h.service.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateRunning, h.service.State())

	require.Len(t, enumerator.calls, 1)
	assert.Equal(t, categoryURL, enumerator.calls[0].url)
	assert.Equal(t, "زنانه > لباس زنانه > پیراهن", enumerator.calls[0].label)
	assert.Equal(t, 10, enumerator.calls[0].limit)

	count, err := h.repo.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var categories int
	require.NoError(t, h.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, 1, categories)

	productDir := filepath.Join(h.assetsDir, "زنانه", "لباس زنانه", "پیراهن", "dkp-101")
	docPath := filepath.Join(productDir, "dkp-101.json")

	file, err := os.Open(docPath)
	require.NoError(t, err)
	defer file.Close()

	var record domain.ProductRecord
	require.NoError(t, json.NewDecoder(file).Decode(&record))

	assert.Equal(t, "dkp-101", record.ProductID)
	assert.Equal(t, "زنانه", record.MainCategory)
	assert.Equal(t, "پیراهن نخی زنانه", record.Title)
	require.NotNil(t, record.Price)
	assert.Equal(t, "۱٬۲۵۰٬۰۰۰ تومان", *record.Price)
	assert.Equal(t, domain.SpecList{{Label: "جنس", Value: "نخ پنبه"}}, record.Specifications)
	assert.Equal(t, docPath, record.JSONPath)

	// The failed second download leaves a hole in the numbering.
	wantImages := []string{
		filepath.Join(productDir, "dkp-101_image_1.jpg"),
		filepath.Join(productDir, "dkp-101_image_3.jpg"),
	}
	assert.Equal(t, wantImages, record.Images)

	data, err := os.ReadFile(wantImages[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("image-one"), data)

	_, statErr := os.Stat(filepath.Join(productDir, "dkp-101_image_2.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunSkipsBrokenProductsAndKeepsGoing(t *testing.T) {
	categoryURL := "https://www.digistyle.com/category-women-dress/"
	client := &fakeClient{
		tree: testTree(),
		details: map[string]*domain.ProductDetails{
			"https://www.digistyle.com/product/dkp-102/": {
				Title:          "تی شرت",
				Specifications: domain.SpecList{},
				ImageURLs:      []string{},
			},
		},
		detailErr: map[string]error{
			"https://www.digistyle.com/product/dkp-101/": errors.New("HTTP 500"),
		},
	}
	enumerator := &fakeEnumerator{
		listings: map[string][]domain.Listing{
			categoryURL: {
				{ProductID: "dkp-101", DetailURL: "https://www.digistyle.com/product/dkp-101/"},
				{ProductID: "dkp-102", DetailURL: "https://www.digistyle.com/product/dkp-102/"},
			},
		},
	}
	h := newHarness(t, t.TempDir(), client, enumerator, true)

	err := h.service.Run(context.Background())

	require.NoError(t, err)

	count, err := h.repo.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, statErr := os.Stat(filepath.Join(h.assetsDir, "زنانه", "لباس زنانه", "پیراهن", "dkp-102", "dkp-102.json"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(h.assetsDir, "زنانه", "لباس زنانه", "پیراهن", "dkp-101"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunKeepsPartialListingsOnEnumerationFailure(t *testing.T) {
	categoryURL := "https://www.digistyle.com/category-women-dress/"
	client := &fakeClient{
		tree: testTree(),
		details: map[string]*domain.ProductDetails{
			"https://www.digistyle.com/product/dkp-101/": {
				Title:          "پیراهن",
				Specifications: domain.SpecList{},
				ImageURLs:      []string{},
			},
		},
	}
	enumerator := &fakeEnumerator{
		listings: map[string][]domain.Listing{
			categoryURL: {
				{ProductID: "dkp-101", DetailURL: "https://www.digistyle.com/product/dkp-101/"},
			},
		},
		errs: map[string]error{
			categoryURL: errors.New("session lost mid-scroll"),
		},
	}
	h := newHarness(t, t.TempDir(), client, enumerator, true)

	err := h.service.Run(context.Background())

	require.NoError(t, err)

	count, err := h.repo.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "listings collected before the failure are still processed")
}

func TestRunSecondRunAddsNoRows(t *testing.T) {
	dir := t.TempDir()
	categoryURL := "https://www.digistyle.com/category-women-dress/"

	newFakes := func() (*fakeClient, *fakeEnumerator) {
		client := &fakeClient{
			tree: testTree(),
			details: map[string]*domain.ProductDetails{
				"https://www.digistyle.com/product/dkp-101/": {
					Title:          "پیراهن",
					Specifications: domain.SpecList{},
					ImageURLs:      []string{},
				},
			},
		}
		enumerator := &fakeEnumerator{
			listings: map[string][]domain.Listing{
				categoryURL: {
					{ProductID: "dkp-101", DetailURL: "https://www.digistyle.com/product/dkp-101/"},
				},
			},
		}
		return client, enumerator
	}

	client, enumerator := newFakes()
	first := newHarness(t, dir, client, enumerator, true)
	require.NoError(t, first.service.Run(context.Background()))

	firstCount, err := first.repo.CountProducts(context.Background())
	require.NoError(t, err)

	client, enumerator = newFakes()
	second := newHarness(t, dir, client, enumerator, true)
	require.NoError(t, second.service.Run(context.Background()))

	secondCount, err := second.repo.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstCount, secondCount)

	var categories int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, 1, categories, "categories accumulate by ignore-on-conflict, not by duplication")
}

func TestRunFailsWhenDiscoveryFails(t *testing.T) {
	client := &fakeClient{treeErr: errors.New("HTTP 503")}
	h := newHarness(t, t.TempDir(), client, &fakeEnumerator{}, true)

	err := h.service.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to discover categories")
	assert.Equal(t, StateAwaitingConfirmation, h.service.State())
	assert.Empty(t, h.confirmer.prompts)
}
