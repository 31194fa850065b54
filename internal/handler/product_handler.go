package handler

import (
	"net/http"

	"catalog-api/internal/auth"
	"catalog-api/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	maxBody int64
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService, maxBody int64, logger zerolog.Logger) *ProductHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &ProductHandler{
		service: svc,
		maxBody: maxBody,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	in, err := productInput(p)
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

// List handles GET /api/products requests. Anonymous callers only see
// active products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context(), auth.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, views)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetByID(r.Context(), r.PathValue("id"), auth.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := readPayload(w, r, h.maxBody)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	patch, err := productPatch(p)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	view, err := h.service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCategory handles POST /api/products/{id}/categories/{categoryId} requests.
func (h *ProductHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.AddCategory(r.Context(), r.PathValue("id"), r.PathValue("categoryId"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}

// RemoveCategory handles DELETE /api/products/{id}/categories/{categoryId} requests.
func (h *ProductHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.RemoveCategory(r.Context(), r.PathValue("id"), r.PathValue("categoryId"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, view)
}
