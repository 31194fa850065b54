package service

import "catalog-api/internal/model"

// IsVisible reports whether a caller may see p. Admins see everything;
// everyone else sees active products and legacy products with no status.
func IsVisible(p *model.Product, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	return p.Status == model.StatusActive || p.Status == ""
}

// filterVisible keeps the products visible to the caller, preserving order.
func filterVisible(products []model.Product, isAdmin bool) []model.Product {
	visible := make([]model.Product, 0, len(products))
	for i := range products {
		if IsVisible(&products[i], isAdmin) {
			visible = append(visible, products[i])
		}
	}
	return visible
}
