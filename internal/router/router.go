package router

import (
	"net/http"
	"strings"

	"catalog-api/internal/auth"
	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Users      *handler.UserHandler
	Health     http.HandlerFunc
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	Authenticator auth.Authenticator
	RateLimiter   *middleware.RateLimiter

	// UploadDir is served under UploadPath when both are set.
	UploadDir  string
	UploadPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Catalog writes and user records require an authenticated caller.
	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireUser(fn)
	}

	mux.Handle("GET /health", h.Health)

	// Users
	mux.HandleFunc("POST /api/users/register", h.Users.Register)
	mux.HandleFunc("POST /api/users/login", h.Users.Login)
	mux.Handle("GET /api/users", authed(h.Users.List))
	mux.Handle("GET /api/users/profile/me", authed(h.Users.Me))
	mux.Handle("GET /api/users/{id}", authed(h.Users.GetByID))
	mux.Handle("PUT /api/users/{id}", authed(h.Users.Update))
	mux.Handle("DELETE /api/users/{id}", authed(h.Users.Delete))

	// Categories
	mux.HandleFunc("GET /api/categories", h.Categories.List)
	mux.HandleFunc("GET /api/categories/hierarchy", h.Categories.Hierarchy)
	mux.HandleFunc("GET /api/categories/{id}", h.Categories.GetByID)
	mux.HandleFunc("GET /api/categories/{id}/subcategories", h.Categories.Subcategories)
	mux.HandleFunc("GET /api/categories/{id}/products", h.Categories.Products)
	mux.Handle("POST /api/categories", authed(h.Categories.Create))
	mux.Handle("PUT /api/categories/{id}", authed(h.Categories.Update))
	mux.Handle("DELETE /api/categories/{id}", authed(h.Categories.Delete))

	// Products
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)
	mux.Handle("POST /api/products", authed(h.Products.Create))
	mux.Handle("PUT /api/products/{id}", authed(h.Products.Update))
	mux.Handle("DELETE /api/products/{id}", authed(h.Products.Delete))
	mux.Handle("POST /api/products/{id}/categories/{categoryId}", authed(h.Products.AddCategory))
	mux.Handle("DELETE /api/products/{id}/categories/{categoryId}", authed(h.Products.RemoveCategory))

	if opts.UploadDir != "" && strings.HasPrefix(opts.UploadPath, "/") {
		prefix := strings.TrimSuffix(opts.UploadPath, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadDir))))
		logger.Info().Str("path", prefix).Str("dir", opts.UploadDir).Msg("serving local uploads")
	}

	// Recovery -> Logging -> CORS -> RateLimit -> Authenticate
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.CORS,
	}
	if opts.RateLimiter != nil {
		middlewares = append(middlewares, opts.RateLimiter.Middleware)
	}
	if opts.Authenticator != nil {
		middlewares = append(middlewares, middleware.Authenticate(opts.Authenticator, logger))
	}

	return middleware.Chain(mux, middlewares...)
}
