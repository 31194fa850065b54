package model

// Optional carries a field of a partial update. Set distinguishes
// "absent from the payload" from "present with the zero value".
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ApplyTo copies the value into dst when the field is set.
func (o Optional[T]) ApplyTo(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

// Upload is a raw file payload waiting to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateCategoryInput is the normalized payload for creating a category.
type CreateCategoryInput struct {
	Name     string  `json:"name" validate:"notblank,max=200"`
	ParentID *string `json:"parentId"`
	Comment  *string `json:"comment"`
	ImageURL *string `json:"imageUrl"`
	Image    *Upload `json:"-"`
}

// UpdateCategoryInput is the normalized payload for updating a category.
// A set ParentID holding nil turns the category into a root.
type UpdateCategoryInput struct {
	Name     Optional[string]
	ParentID Optional[*string]
	Comment  Optional[*string]
	ImageURL Optional[*string]
	Image    *Upload
}

// DeleteCategoryOptions controls category deletion.
type DeleteCategoryOptions struct {
	Cascade bool
	// DetachProducts strips every deleted id from product category ids.
	DetachProducts bool
}

// ProductInput is the normalized payload for creating a product.
type ProductInput struct {
	Name                         string
	Brand                        string
	OriginalPrice                *float64
	DiscountedPrice              *float64
	DiscountPercentage           *float64
	PriceIncludesTax             bool
	ShippingIncluded             bool
	ShippingCalculatedAtCheckout bool
	StorePurchaseOnly            bool
	StylePincodePrompt           bool
	Color                        string
	Material                     string
	WarrantyPeriod               string
	Delivery                     string
	Installation                 string
	StockStatus                  string
	Note                         string
	ProductCareInstructions      string
	ReturnAndCancellationPolicy  string
	Features                     []string
	ImageURLs                    []string
	CategoryIDs                  []string
	Status                       ProductStatus
	Images                       []Upload
}

// ProductPatch is the normalized payload for updating a product.
// Unset fields are left untouched.
type ProductPatch struct {
	Name                         Optional[string]
	Brand                        Optional[string]
	OriginalPrice                Optional[*float64]
	DiscountedPrice              Optional[*float64]
	DiscountPercentage           Optional[*float64]
	PriceIncludesTax             Optional[bool]
	ShippingIncluded             Optional[bool]
	ShippingCalculatedAtCheckout Optional[bool]
	StorePurchaseOnly            Optional[bool]
	StylePincodePrompt           Optional[bool]
	Color                        Optional[string]
	Material                     Optional[string]
	WarrantyPeriod               Optional[string]
	Delivery                     Optional[string]
	Installation                 Optional[string]
	StockStatus                  Optional[string]
	Note                         Optional[string]
	ProductCareInstructions      Optional[string]
	ReturnAndCancellationPolicy  Optional[string]
	Features                     Optional[[]string]
	ImageURLs                    Optional[[]string]
	CategoryIDs                  Optional[[]string]
	Status                       Optional[ProductStatus]
	Images                       []Upload
}

// RegisterUserInput is the payload for registering a user.
type RegisterUserInput struct {
	Name     string `json:"name" validate:"notblank"`
	Phone    string `json:"phone" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput changes a user's own record. Empty fields are ignored.
type UpdateUserInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
