package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"catalog-api/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCredentials(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		wantPhone    string
		wantPassword string
		wantPresent  bool
		wantErr      bool
	}{
		{name: "no header"},
		{name: "valid", header: "Basic OTAwMDAwMDAwMTpzZWNyZXQ=", wantPhone: "9000000001", wantPassword: "secret", wantPresent: true},
		{name: "password with colon", header: "Basic MTphOmI=", wantPhone: "1", wantPassword: "a:b", wantPresent: true},
		{name: "bearer scheme", header: "Bearer token", wantPresent: true, wantErr: true},
		{name: "bad base64", header: "Basic !!!", wantPresent: true, wantErr: true},
		{name: "no colon", header: "Basic OTAwMA==", wantPresent: true, wantErr: true},
		{name: "empty phone", header: "Basic OnNlY3JldA==", wantPresent: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			phone, password, present, err := Credentials(req)
			assert.Equal(t, tt.wantPresent, present)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCredentials)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPhone, phone)
			assert.Equal(t, tt.wantPassword, password)
		})
	}
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsAdmin(ctx))

	_, ok := UserFrom(ctx)
	assert.False(t, ok)

	user := &model.User{ID: "u1", Name: "Asha"}
	ctx = WithUser(ctx, user)

	got, ok := UserFrom(ctx)
	assert.True(t, ok)
	assert.Same(t, user, got)
	assert.True(t, IsAdmin(ctx))

	assert.False(t, IsAdmin(WithUser(context.Background(), nil)))
}
