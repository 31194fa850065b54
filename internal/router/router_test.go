package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	catalog := service.NewCatalog(repository.NewMemoryStore(logger), nil, logger)
	if opts.Authenticator == nil {
		opts.Authenticator = catalog.Users
	}

	return New(Handlers{
		Categories: handler.NewCategoryHandler(catalog.Categories, catalog.Products, 0, logger),
		Products:   handler.NewProductHandler(catalog.Products, 0, logger),
		Users:      handler.NewUserHandler(catalog.Users, 0, logger),
		Health:     handler.Health(catalog, logger),
	}, opts, logger)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t, Options{})

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "List categories", method: http.MethodGet, path: "/api/categories", expectedStatus: http.StatusOK},
		{name: "Hierarchy is not an id", method: http.MethodGet, path: "/api/categories/hierarchy", expectedStatus: http.StatusOK},
		{name: "Unknown category", method: http.MethodGet, path: "/api/categories/missing", expectedStatus: http.StatusNotFound},
		{name: "List products", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "Anonymous category create", method: http.MethodPost, path: "/api/categories", body: `{"name":"Sofas"}`, expectedStatus: http.StatusUnauthorized},
		{name: "Anonymous product delete", method: http.MethodDelete, path: "/api/products/p1", expectedStatus: http.StatusUnauthorized},
		{name: "Anonymous membership change", method: http.MethodPost, path: "/api/products/p1/categories/c1", expectedStatus: http.StatusUnauthorized},
		{name: "Anonymous user list", method: http.MethodGet, path: "/api/users", expectedStatus: http.StatusUnauthorized},
		{name: "Register is open", method: http.MethodPost, path: "/api/users/register", body: `{"name":"Asha","phone":"9000000001","password":"pw"}`, expectedStatus: http.StatusCreated},
		{name: "Method not allowed", method: http.MethodPatch, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Preflight", method: http.MethodOptions, path: "/api/products", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_AuthenticatedWrite(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := serve(r, http.MethodPost, "/api/users/register", `{"name":"Asha","phone":"9000000001","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Sofas"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("9000000001", "pw")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Sofas"`)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newTestRouter(t, Options{RateLimiter: middleware.NewRateLimiter(1, 2)})

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, serve(r, http.MethodGet, "/health", "").Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "categories"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories", "a.png"), []byte("png"), 0o644))

	t.Run("Mounted", func(t *testing.T) {
		r := newTestRouter(t, Options{UploadDir: dir, UploadPath: "/uploads"})

		w := serve(r, http.MethodGet, "/uploads/categories/a.png", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "png", w.Body.String())

		w = serve(r, http.MethodGet, "/uploads/categories/missing.png", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Not mounted without a path", func(t *testing.T) {
		r := newTestRouter(t, Options{UploadDir: dir})

		w := serve(r, http.MethodGet, "/uploads/categories/a.png", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
