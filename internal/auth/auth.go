// Package auth decodes Basic credentials and carries the authenticated
// user through a request context.
package auth

import (
	"context"
	"errors"
	"net/http"

	"catalog-api/internal/model"
)

// ErrMalformedCredentials is returned for an Authorization header that is
// present but not valid Basic credentials.
var ErrMalformedCredentials = errors.New("malformed basic credentials")

// Authenticator resolves a phone and password pair to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, phone, password string) (*model.User, error)
}

// Credentials extracts the phone and password from r's Basic Authorization header.
// present is false when the request carries no Authorization header at all.
func Credentials(r *http.Request) (phone, password string, present bool, err error) {
	if r.Header.Get("Authorization") == "" {
		return "", "", false, nil
	}

	phone, password, ok := r.BasicAuth()
	if !ok || phone == "" {
		return "", "", true, ErrMalformedCredentials
	}
	return phone, password, true, nil
}

type userKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey{}).(*model.User)
	return user, ok && user != nil
}

// IsAdmin reports whether the caller may see inactive products.
// Every authenticated user is an admin.
func IsAdmin(ctx context.Context) bool {
	_, ok := UserFrom(ctx)
	return ok
}
