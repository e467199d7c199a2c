package assets

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/amirrezavafa/Digistyle-crawler/internal/domain"
)

// Writer lays crawled artifacts out on disk under one assets root:
//
//	<root>/<sanitized main>/<sanitized sub>/<sanitized nested>/<productID>/
//
// holding the per-product document and its downloaded images. Documents are
// overwritten on re-runs; image files are rewritten in place as well.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// ProductDir returns the directory all artifacts of one product live in.
func (w *Writer) ProductDir(main, sub, nested, productID string) string {
	return filepath.Join(w.root, Sanitize(main), Sanitize(sub), Sanitize(nested), productID)
}

// DocumentPath returns the canonical location of a product's document. It is
// deterministic so records can carry their document location before the
// document itself is written.
func (w *Writer) DocumentPath(main, sub, nested, productID string) string {
	return filepath.Join(w.ProductDir(main, sub, nested, productID), productID+".json")
}

// SaveImage writes one downloaded image under the product directory. The
// position is the image's 1-based place in the gallery; positions of images
// that failed to download stay unused so the numbering is stable.
func (w *Writer) SaveImage(main, sub, nested, productID string, position int, data []byte) (string, error) {
	dir := w.ProductDir(main, sub, nested, productID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create product directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_image_%d.jpg", productID, position))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path, nil
}

// WriteDocument writes the record to its canonical document path,
// overwriting any previous version. Non-ASCII text is stored as-is.
func (w *Writer) WriteDocument(record *domain.ProductRecord) (string, error) {
	dir := w.ProductDir(record.MainCategory, record.SubCategory, record.NestedCategory, record.ProductID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create product directory: %w", err)
	}

	path := w.DocumentPath(record.MainCategory, record.SubCategory, record.NestedCategory, record.ProductID)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	if err := encodeDocument(file, record); err != nil {
		return "", err
	}

	return path, nil
}

// encodeDocument writes the record as indented JSON with non-ASCII text kept
// raw, then closes out. A failed close counts as a failed write.
func encodeDocument(out io.WriteCloser, record *domain.ProductRecord) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(record); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode product document: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close document file: %w", err)
	}
	return nil
}
