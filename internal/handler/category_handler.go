package handler

import (
	"net/http"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"
	"catalog-api/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	service  service.CategoryService
	products service.ProductService
	maxBody  int64
	logger   zerolog.Logger
}

// NewCategoryHandler creates a new category handler. Products are needed to
// list the products of a category.
func NewCategoryHandler(svc service.CategoryService, products service.ProductService, maxBody int64, logger zerolog.Logger) *CategoryHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &CategoryHandler{
		service:  svc,
		products: products,
		maxBody:  maxBody,
		logger:   logger.With().Str("handler", "category").Logger(),
	}
}

// Create handles POST /api/categories requests.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	in, err := createCategoryInput(p)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	view, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, view)
}

// List handles GET /api/categories requests.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

// Hierarchy handles GET /api/categories/hierarchy requests.
func (h *CategoryHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Hierarchy(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

// GetByID handles GET /api/categories/{id} requests.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

// Subcategories handles GET /api/categories/{id}/subcategories requests.
func (h *CategoryHandler) Subcategories(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.Subcategories(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

// Products handles GET /api/categories/{id}/products requests.
func (h *CategoryHandler) Products(w http.ResponseWriter, r *http.Request) {
	views, err := h.products.ListByCategory(r.Context(), r.PathValue("id"), auth.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

// Update handles PUT /api/categories/{id} requests.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	in, err := updateCategoryInput(p)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	view, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

// Delete handles DELETE /api/categories/{id}?cascade=&detachProducts= requests.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := model.DeleteCategoryOptions{
		Cascade:        cast.ToBool(query.Get("cascade")),
		DetachProducts: cast.ToBool(query.Get("detachProducts")),
	}

	result, err := h.service.Delete(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("category_id", r.PathValue("id")).
		Int("count", len(result.DeletedIDs)).
		Int64("detached_products", result.DetachedProducts).
		Msg("categories deleted")

	writeJSON(w, h.logger, http.StatusOK, result)
}
