package model

import (
	"slices"
	"time"
)

// ProductStatus controls product visibility for anonymous callers.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// Product represents an item in the catalogue.
// CategoryIDs is not a live foreign key: ids may dangle after a category is deleted.
// An empty Status is a legacy record and is treated as active.
type Product struct {
	ID                           string        `json:"id" db:"id"`
	Name                         string        `json:"name" db:"name" validate:"notblank,max=200"`
	Brand                        string        `json:"brand" db:"brand"`
	OriginalPrice                *float64      `json:"originalPrice" db:"original_price" validate:"omitempty,gte=0"`
	DiscountedPrice              *float64      `json:"discountedPrice" db:"discounted_price" validate:"omitempty,gte=0"`
	DiscountPercentage           *float64      `json:"discountPercentage" db:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	PriceIncludesTax             bool          `json:"priceIncludesTax" db:"price_includes_tax"`
	ShippingIncluded             bool          `json:"shippingIncluded" db:"shipping_included"`
	ShippingCalculatedAtCheckout bool          `json:"shippingCalculatedAtCheckout" db:"shipping_calculated_at_checkout"`
	StorePurchaseOnly            bool          `json:"storePurchaseOnly" db:"store_purchase_only"`
	StylePincodePrompt           bool          `json:"stylePincodePrompt" db:"style_pincode_prompt"`
	Color                        string        `json:"color" db:"color"`
	Material                     string        `json:"material" db:"material"`
	WarrantyPeriod               string        `json:"warrantyPeriod" db:"warranty_period"`
	Delivery                     string        `json:"delivery" db:"delivery"`
	Installation                 string        `json:"installation" db:"installation"`
	StockStatus                  string        `json:"stockStatus" db:"stock_status"`
	Note                         string        `json:"note" db:"note"`
	ProductCareInstructions      string        `json:"productCareInstructions" db:"product_care_instructions"`
	ReturnAndCancellationPolicy  string        `json:"returnAndCancellationPolicy" db:"return_and_cancellation_policy"`
	Features                     []string      `json:"features" db:"features"`
	ImageURLs                    []string      `json:"imageUrls" db:"image_urls"`
	CategoryIDs                  []string      `json:"categoryIds" db:"category_ids"`
	Status                       ProductStatus `json:"status,omitempty" db:"status"`
	CreatedAt                    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt                    time.Time     `json:"updatedAt" db:"updated_at"`
}

// HasCategory reports whether categoryID is among the product's category ids.
func (p *Product) HasCategory(categoryID string) bool {
	return slices.Contains(p.CategoryIDs, categoryID)
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	p.Features = slices.Clone(p.Features)
	p.ImageURLs = slices.Clone(p.ImageURLs)
	p.CategoryIDs = slices.Clone(p.CategoryIDs)
	return p
}

// ProductView is a product with its existing categories resolved.
type ProductView struct {
	Product
	Categories []Category `json:"categories"`
}
