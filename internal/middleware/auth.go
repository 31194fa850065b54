package middleware

import (
	"errors"
	"net/http"

	"catalog-api/internal/auth"
	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// Authenticate resolves Basic credentials into a user on the request context.
// Requests without an Authorization header pass through anonymously;
// malformed or wrong credentials are rejected with 401.
func Authenticate(authn auth.Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			phone, password, present, err := auth.Credentials(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed credentials")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "Malformed Authorization header")
				return
			}

			user, err := authn.Authenticate(r.Context(), phone, password)
			if err != nil {
				var domainErr *model.DomainError
				if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeUnauthenticated {
					logger.Warn().Str("path", r.URL.Path).Msg("invalid credentials")
					writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, domainErr.Message)
					return
				}

				logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to authenticate")
				writeError(w, http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable, "Unable to verify credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="catalog"`)
			writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthenticated, model.ErrUnauthenticated.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
