package service

import (
	"context"
	"testing"

	"catalog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   model.RegisterUserInput
		errCode string
	}{
		{name: "valid", input: model.RegisterUserInput{Name: "Asha", Phone: "9000000001", Password: "secret"}},
		{name: "duplicate phone", input: model.RegisterUserInput{Name: "Ravi", Phone: "9000000001", Password: "other"}, errCode: model.ErrCodeConflict},
		{name: "missing phone", input: model.RegisterUserInput{Name: "Ravi", Password: "x"}, errCode: model.ErrCodeValidation},
		{name: "missing password", input: model.RegisterUserInput{Name: "Ravi", Phone: "9000000002"}, errCode: model.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := catalog.Users.Register(ctx, tt.input)
			if tt.errCode != "" {
				requireCode(t, err, tt.errCode)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, tt.input.Phone, user.Phone)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	registered, err := catalog.Users.Register(ctx, model.RegisterUserInput{Name: "Asha", Phone: "9000000001", Password: "secret"})
	require.NoError(t, err)

	user, err := catalog.Users.Authenticate(ctx, "9000000001", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = catalog.Users.Authenticate(ctx, "9000000001", "Secret")
	requireCode(t, err, model.ErrCodeUnauthenticated)

	_, err = catalog.Users.Authenticate(ctx, "9999999999", "secret")
	requireCode(t, err, model.ErrCodeUnauthenticated)
}

func TestUserService_UpdateOwnOnly(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	asha, err := catalog.Users.Register(ctx, model.RegisterUserInput{Name: "Asha", Phone: "1", Password: "a"})
	require.NoError(t, err)
	ravi, err := catalog.Users.Register(ctx, model.RegisterUserInput{Name: "Ravi", Phone: "2", Password: "r"})
	require.NoError(t, err)

	_, err = catalog.Users.Update(ctx, ravi.ID, asha.ID, model.UpdateUserInput{Name: "Hacked"})
	requireCode(t, err, model.ErrCodeForbidden)

	_, err = catalog.Users.Update(ctx, asha.ID, asha.ID, model.UpdateUserInput{Phone: "2"})
	requireCode(t, err, model.ErrCodeConflict)

	updated, err := catalog.Users.Update(ctx, asha.ID, asha.ID, model.UpdateUserInput{Name: "Asha K", Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "1", updated.Phone)

	_, err = catalog.Users.Authenticate(ctx, "1", "new")
	require.NoError(t, err)
}

func TestUserService_Delete(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)
	ctx := context.Background()

	asha, err := catalog.Users.Register(ctx, model.RegisterUserInput{Name: "Asha", Phone: "1", Password: "a"})
	require.NoError(t, err)

	err = catalog.Users.Delete(ctx, "someone-else", asha.ID)
	requireCode(t, err, model.ErrCodeForbidden)

	require.NoError(t, catalog.Users.Delete(ctx, asha.ID, asha.ID))

	_, err = catalog.Users.GetByID(ctx, asha.ID)
	requireCode(t, err, model.ErrCodeNotFound)

	users, err := catalog.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
