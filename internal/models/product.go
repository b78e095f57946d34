package models

// Catalog is the root document returned by the storefront's products.json endpoint.
type Catalog struct {
	Products []Product `json:"products"`
}

// Product is a snapshot of one storefront product as it was observed in a single fetch.
// Only Title, BodyHTML and Variants take part in change detection.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	BodyHTML    string          `json:"body_html"`
	PublishedAt string          `json:"published_at"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Tags        []string        `json:"tags"`
	Variants    []Variant       `json:"variants"`
	Images      []Image         `json:"images"`
	Options     []ProductOption `json:"options"`
}

// Variant is a purchasable variant of a product. Price stays a string as served by the storefront.
type Variant struct {
	ID               int64   `json:"id"`
	ProductID        int64   `json:"product_id"`
	Title            string  `json:"title"`
	Option1          *string `json:"option1"`
	Option2          *string `json:"option2"`
	Option3          *string `json:"option3"`
	SKU              string  `json:"sku"`
	RequiresShipping bool    `json:"requires_shipping"`
	Taxable          bool    `json:"taxable"`
	FeaturedImage    *Image  `json:"featured_image"`
	Available        bool    `json:"available"`
	Price            string  `json:"price"`
	Grams            int64   `json:"grams"`
	CompareAtPrice   *string `json:"compare_at_price"`
	Position         int64   `json:"position"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// Image is a product or variant image.
type Image struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Position   int64   `json:"position"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	VariantIDs []int64 `json:"variant_ids"`
	Src        string  `json:"src"`
	Width      int64   `json:"width"`
	Height     int64   `json:"height"`
	Alt        *string `json:"alt"`
}

// ProductOption describes one option axis (size, colour, ...) of a product.
type ProductOption struct {
	Name     string   `json:"name"`
	Position int64    `json:"position"`
	Values   []string `json:"values"`
}
