package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"

	_ "modernc.org/sqlite" // SQLite driver
)

type ProductRepository interface {
	InitSchema(ctx context.Context) error
	SaveCategory(ctx context.Context, mainCategory, subCategory, url string) error
	SaveProduct(ctx context.Context, record *domain.ProductRecord) (bool, error)
	CountProducts(ctx context.Context) (int, error)
	CountCategories(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

// OpenDatabase prepares a SQLite handle at path. Opening is lazy: no file
// is created until the first statement runs, so an aborted run leaves no
// trace on disk.
func OpenDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer and the crawl is sequential anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// InitSchema prepares both tables for a crawl run. The categories table
// survives across runs; the products table is dropped and rebuilt so every
// confirmed crawl starts from an empty product set.
func (r *productRepository) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		main_category TEXT NOT NULL,
		sub_category TEXT NOT NULL,
		url TEXT,
		UNIQUE (main_category, sub_category)
	);

	DROP TABLE IF EXISTS products;

	CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		main_category TEXT NOT NULL,
		sub_category TEXT NOT NULL,
		nested_category TEXT NOT NULL,
		product_id TEXT NOT NULL,
		title TEXT,
		subtitle TEXT,
		price TEXT,
		old_price TEXT,
		discount TEXT,
		description TEXT,
		additional_details TEXT,
		specs TEXT,
		images TEXT,
		json_path TEXT,
		UNIQUE (main_category, sub_category, nested_category, product_id)
	);
	`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// SaveCategory records one crawlable category. The uniqueness key is
// (main_category, sub_category), so leaf categories sharing a sub-category
// collapse to one row and the first saved URL is kept.
func (r *productRepository) SaveCategory(ctx context.Context, mainCategory, subCategory, url string) error {
	query := `
	INSERT OR IGNORE INTO categories (main_category, sub_category, url)
	VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, mainCategory, subCategory, url); err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}

	return nil
}

// SaveProduct inserts one crawled record and reports whether a row was
// actually written. A record whose identity tuple already exists is left
// untouched: first write wins.
func (r *productRepository) SaveProduct(ctx context.Context, record *domain.ProductRecord) (bool, error) {
	specsJSON, err := json.Marshal(record.Specifications)
	if err != nil {
		return false, fmt.Errorf("failed to serialize specifications: %w", err)
	}

	imagesJSON, err := json.Marshal(record.Images)
	if err != nil {
		return false, fmt.Errorf("failed to serialize image paths: %w", err)
	}

	query := `
	INSERT OR IGNORE INTO products (
		main_category, sub_category, nested_category, product_id,
		title, subtitle, price, old_price, discount,
		description, additional_details, specs, images, json_path
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		record.MainCategory,
		record.SubCategory,
		record.NestedCategory,
		record.ProductID,
		record.Title,
		record.Subtitle,
		record.Price,
		record.OldPrice,
		record.Discount,
		record.Description,
		record.AdditionalDetails,
		string(specsJSON),
		string(imagesJSON),
		record.JSONPath,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save product: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert outcome: %w", err)
	}

	return inserted > 0, nil
}

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func (r *productRepository) CountCategories(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}

	return count, nil
}
