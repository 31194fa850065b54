package handler

import (
	"strings"

	"catalog-api/internal/model"
)

// productText lists the free-text product fields by payload key.
var productText = []struct {
	key   string
	input func(*model.ProductInput) *string
	patch func(*model.ProductPatch) *model.Optional[string]
}{
	{"brand", func(in *model.ProductInput) *string { return &in.Brand }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Brand }},
	{"color", func(in *model.ProductInput) *string { return &in.Color }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Color }},
	{"material", func(in *model.ProductInput) *string { return &in.Material }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Material }},
	{"warrantyPeriod", func(in *model.ProductInput) *string { return &in.WarrantyPeriod }, func(p *model.ProductPatch) *model.Optional[string] { return &p.WarrantyPeriod }},
	{"delivery", func(in *model.ProductInput) *string { return &in.Delivery }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Delivery }},
	{"installation", func(in *model.ProductInput) *string { return &in.Installation }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Installation }},
	{"stockStatus", func(in *model.ProductInput) *string { return &in.StockStatus }, func(p *model.ProductPatch) *model.Optional[string] { return &p.StockStatus }},
	{"note", func(in *model.ProductInput) *string { return &in.Note }, func(p *model.ProductPatch) *model.Optional[string] { return &p.Note }},
	{"productCareInstructions", func(in *model.ProductInput) *string { return &in.ProductCareInstructions }, func(p *model.ProductPatch) *model.Optional[string] { return &p.ProductCareInstructions }},
	{"returnAndCancellationPolicy", func(in *model.ProductInput) *string { return &in.ReturnAndCancellationPolicy }, func(p *model.ProductPatch) *model.Optional[string] { return &p.ReturnAndCancellationPolicy }},
}

var productFlags = []struct {
	key   string
	input func(*model.ProductInput) *bool
	patch func(*model.ProductPatch) *model.Optional[bool]
}{
	{"priceIncludesTax", func(in *model.ProductInput) *bool { return &in.PriceIncludesTax }, func(p *model.ProductPatch) *model.Optional[bool] { return &p.PriceIncludesTax }},
	{"shippingIncluded", func(in *model.ProductInput) *bool { return &in.ShippingIncluded }, func(p *model.ProductPatch) *model.Optional[bool] { return &p.ShippingIncluded }},
	{"shippingCalculatedAtCheckout", func(in *model.ProductInput) *bool { return &in.ShippingCalculatedAtCheckout }, func(p *model.ProductPatch) *model.Optional[bool] { return &p.ShippingCalculatedAtCheckout }},
	{"storePurchaseOnly", func(in *model.ProductInput) *bool { return &in.StorePurchaseOnly }, func(p *model.ProductPatch) *model.Optional[bool] { return &p.StorePurchaseOnly }},
	{"stylePincodePrompt", func(in *model.ProductInput) *bool { return &in.StylePincodePrompt }, func(p *model.ProductPatch) *model.Optional[bool] { return &p.StylePincodePrompt }},
}

var productPrices = []struct {
	key   string
	input func(*model.ProductInput) **float64
	patch func(*model.ProductPatch) *model.Optional[*float64]
}{
	{"originalPrice", func(in *model.ProductInput) **float64 { return &in.OriginalPrice }, func(p *model.ProductPatch) *model.Optional[*float64] { return &p.OriginalPrice }},
	{"discountedPrice", func(in *model.ProductInput) **float64 { return &in.DiscountedPrice }, func(p *model.ProductPatch) *model.Optional[*float64] { return &p.DiscountedPrice }},
	{"discountPercentage", func(in *model.ProductInput) **float64 { return &in.DiscountPercentage }, func(p *model.ProductPatch) *model.Optional[*float64] { return &p.DiscountPercentage }},
}

func createCategoryInput(p *payload) (model.CreateCategoryInput, error) {
	name, _ := p.text("name")
	parentID, _ := p.optionalText("parentId")
	comment, _ := p.optionalText("comment")
	imageURL, _ := p.optionalText("imageUrl")

	image, err := p.upload("image")
	if err != nil {
		return model.CreateCategoryInput{}, err
	}

	return model.CreateCategoryInput{
		Name:     strings.TrimSpace(name),
		ParentID: parentID,
		Comment:  comment,
		ImageURL: imageURL,
		Image:    image,
	}, nil
}

func updateCategoryInput(p *payload) (model.UpdateCategoryInput, error) {
	var in model.UpdateCategoryInput

	if name, ok := p.text("name"); ok {
		in.Name = model.Some(strings.TrimSpace(name))
	}
	if parentID, ok := p.optionalText("parentId"); ok {
		in.ParentID = model.Some(parentID)
	}
	if comment, ok := p.optionalText("comment"); ok {
		in.Comment = model.Some(comment)
	}
	if imageURL, ok := p.optionalText("imageUrl"); ok {
		in.ImageURL = model.Some(imageURL)
	}

	image, err := p.upload("image")
	if err != nil {
		return model.UpdateCategoryInput{}, err
	}
	in.Image = image

	return in, nil
}

func productInput(p *payload) (model.ProductInput, error) {
	var in model.ProductInput

	name, _ := p.text("name")
	in.Name = strings.TrimSpace(name)

	for _, f := range productText {
		*f.input(&in), _ = p.text(f.key)
	}
	for _, f := range productFlags {
		*f.input(&in), _ = p.flag(f.key)
	}
	for _, f := range productPrices {
		v, _, err := p.number(f.key)
		if err != nil {
			return model.ProductInput{}, err
		}
		*f.input(&in) = v
	}

	in.Features, _ = p.features("features")
	in.ImageURLs, _ = p.stringList("imageUrls")
	in.CategoryIDs, _ = p.categoryIDs("categoryIds")
	in.Status, _ = p.status("status")

	images, err := p.uploads("images")
	if err != nil {
		return model.ProductInput{}, err
	}
	in.Images = images

	return in, nil
}

func productPatch(p *payload) (model.ProductPatch, error) {
	var patch model.ProductPatch

	if name, ok := p.text("name"); ok {
		patch.Name = model.Some(strings.TrimSpace(name))
	}
	for _, f := range productText {
		if v, ok := p.text(f.key); ok {
			*f.patch(&patch) = model.Some(v)
		}
	}
	for _, f := range productFlags {
		if v, ok := p.flag(f.key); ok {
			*f.patch(&patch) = model.Some(v)
		}
	}
	for _, f := range productPrices {
		v, ok, err := p.number(f.key)
		if err != nil {
			return model.ProductPatch{}, err
		}
		if ok {
			*f.patch(&patch) = model.Some(v)
		}
	}

	if v, ok := p.features("features"); ok {
		patch.Features = model.Some(v)
	}
	if v, ok := p.stringList("imageUrls"); ok {
		patch.ImageURLs = model.Some(v)
	}
	if v, ok := p.categoryIDs("categoryIds"); ok {
		patch.CategoryIDs = model.Some(v)
	}
	// An absent status leaves the stored one untouched.
	if v, ok := p.status("status"); ok {
		patch.Status = model.Some(v)
	}

	images, err := p.uploads("images")
	if err != nil {
		return model.ProductPatch{}, err
	}
	patch.Images = images

	return patch, nil
}
