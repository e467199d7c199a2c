package domain

// MissingTitle is stored when a product page carries no title node.
const MissingTitle = "No Title Found"

// Listing is one product discovered on a category page: the stable site
// identifier plus the absolute URL of its detail page.
type Listing struct {
	ProductID string `json:"product_id"`
	DetailURL string `json:"detail_url"`
}

// ProductDetails carries the fields extracted from a single detail page.
// Pointer fields are nil when the page does not render the matching node;
// absence is an ordinary outcome, not an error.
type ProductDetails struct {
	Title             string   `json:"title"`
	Subtitle          *string  `json:"subtitle"`
	Price             *string  `json:"price"`
	OldPrice          *string  `json:"old_price"`
	Discount          *string  `json:"discount"`
	Description       *string  `json:"description"`
	Specifications    SpecList `json:"specifications"`
	AdditionalDetails *string  `json:"additional_details"`
	ImageURLs         []string `json:"image_urls"`
}

// ProductRecord is the canonical persisted form of one crawled product:
// extracted fields joined with the category path that produced it and the
// on-disk artifacts written for it.
type ProductRecord struct {
	ProductID         string   `json:"product_id"`
	MainCategory      string   `json:"main_category"`
	SubCategory       string   `json:"sub_category"`
	NestedCategory    string   `json:"nested_category"`
	Title             string   `json:"title"`
	Subtitle          *string  `json:"subtitle"`
	Price             *string  `json:"price"`
	OldPrice          *string  `json:"old_price"`
	Discount          *string  `json:"discount"`
	Description       *string  `json:"description"`
	Specifications    SpecList `json:"specifications"`
	AdditionalDetails *string  `json:"additional_details"`
	Images            []string `json:"images"`
	JSONPath          string   `json:"json_path"`
}

// NewRecord binds extracted details to the category path they came from.
// Images and JSONPath are filled in by the persistence step.
func NewRecord(main, sub, nested string, listing Listing, details ProductDetails) ProductRecord {
	return ProductRecord{
		ProductID:         listing.ProductID,
		MainCategory:      main,
		SubCategory:       sub,
		NestedCategory:    nested,
		Title:             details.Title,
		Subtitle:          details.Subtitle,
		Price:             details.Price,
		OldPrice:          details.OldPrice,
		Discount:          details.Discount,
		Description:       details.Description,
		Specifications:    details.Specifications,
		AdditionalDetails: details.AdditionalDetails,
		Images:            []string{},
	}
}
