package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises behavior every Store implementation shares.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("Category tree", func(t *testing.T) {
		testCategoryTree(t, newStore(t))
	})
	t.Run("Products and category refs", func(t *testing.T) {
		testProducts(t, newStore(t))
	})
	t.Run("Users", func(t *testing.T) {
		testUsers(t, newStore(t))
	})
	t.Run("Transactions", func(t *testing.T) {
		testTransactions(t, newStore(t))
	})
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func category(id, name string, parentID *string) *model.Category {
	ts := now()
	return &model.Category{ID: id, Name: name, ParentID: parentID, CreatedAt: ts, UpdatedAt: ts}
}

func product(id, name string, categoryIDs ...string) *model.Product {
	ts := now()
	return &model.Product{
		ID:          id,
		Name:        name,
		Features:    []string{},
		ImageURLs:   []string{},
		CategoryIDs: categoryIDs,
		Status:      model.StatusActive,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func testCategoryTree(t *testing.T, store Store) {
	ctx := context.Background()
	repo := store.Categories()

	sofas := "sofas"
	imageURL := "https://cdn.example.com/sofas.jpg"
	root := category(sofas, "Sofas", nil)
	root.ImageURL = &imageURL

	require.NoError(t, repo.Create(ctx, root))
	require.NoError(t, repo.Create(ctx, category("recliners", "Recliners", &sofas)))
	require.NoError(t, repo.Create(ctx, category("beds", "Beds", nil)))

	ghost := "ghost"
	err := repo.Create(ctx, category("orphan", "Orphan", &ghost))
	assert.ErrorIs(t, err, ErrBrokenReference)

	got, err := repo.GetByID(ctx, sofas)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sofas", got.Name)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, imageURL, *got.ImageURL)

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	roots, err := repo.GetByParent(ctx, nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Beds", roots[0].Name, "ordered by name")

	children, err := repo.GetByParent(ctx, &sofas)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "recliners", children[0].ID)

	existing, err := repo.ExistingIDs(ctx, []string{"recliners", "ghost", "beds"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"recliners", "beds"}, existing)

	// A parent cannot go before its children.
	assert.ErrorIs(t, repo.Delete(ctx, sofas), ErrBrokenReference)
	require.NoError(t, repo.Delete(ctx, "recliners"))
	require.NoError(t, repo.Delete(ctx, sofas))
	assert.ErrorIs(t, repo.Delete(ctx, sofas), ErrRecordNotFound)

	beds, err := repo.GetByID(ctx, "beds")
	require.NoError(t, err)
	beds.Name = "Beds & Mattresses"
	require.NoError(t, repo.Update(ctx, beds))
	assert.ErrorIs(t, repo.Update(ctx, category("missing", "Missing", nil)), ErrRecordNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Beds & Mattresses", all[0].Name)
}

func testProducts(t *testing.T, store Store) {
	ctx := context.Background()
	repo := store.Products()

	price := 1999.0
	recliner := product("p1", "Recliner", "sofas", "recliners", "sale")
	recliner.OriginalPrice = &price
	recliner.Features = []string{"Cup holder"}

	require.NoError(t, repo.Create(ctx, recliner))
	require.NoError(t, repo.Create(ctx, product("p2", "Bed", "beds")))
	require.NoError(t, repo.Create(ctx, product("p3", "Armchair", "sofas")))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"sofas", "recliners", "sale"}, got.CategoryIDs)
	assert.Equal(t, []string{"Cup holder"}, got.Features)
	assert.Equal(t, price, *got.OriginalPrice)
	assert.Nil(t, got.DiscountedPrice)

	bySofas, err := repo.GetByCategory(ctx, "sofas")
	require.NoError(t, err)
	require.Len(t, bySofas, 2)
	assert.Equal(t, "Armchair", bySofas[0].Name)

	changed, err := repo.RemoveCategoryRefs(ctx, []string{"sofas", "beds"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	got, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"recliners", "sale"}, got.CategoryIDs, "remaining ids keep their order")

	got.Status = model.StatusInactive
	got.UpdatedAt = now()
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, got.Status)

	assert.ErrorIs(t, repo.Update(ctx, product("missing", "Missing")), ErrRecordNotFound)
	require.NoError(t, repo.Delete(ctx, "p2"))
	assert.ErrorIs(t, repo.Delete(ctx, "p2"), ErrRecordNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testUsers(t *testing.T, store Store) {
	ctx := context.Background()
	repo := store.Users()

	ts := now()
	asha := &model.User{ID: "u1", Name: "Asha", Phone: "9000000001", Password: "secret", CreatedAt: ts, UpdatedAt: ts}
	ravi := &model.User{ID: "u2", Name: "Ravi", Phone: "9000000002", Password: "secret", CreatedAt: ts.Add(time.Second), UpdatedAt: ts}

	require.NoError(t, repo.Create(ctx, asha))
	require.NoError(t, repo.Create(ctx, ravi))

	dup := *ravi
	dup.ID = "u3"
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateKey)

	byPhone, err := repo.GetByPhone(ctx, "9000000001")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, "u1", byPhone.ID)
	assert.Equal(t, "secret", byPhone.Password)

	none, err := repo.GetByPhone(ctx, "0000")
	require.NoError(t, err)
	assert.Nil(t, none)

	ravi.Phone = asha.Phone
	assert.ErrorIs(t, repo.Update(ctx, ravi), ErrDuplicateKey)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "u1", all[0].ID)

	require.NoError(t, repo.Delete(ctx, "u1"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1"), ErrRecordNotFound)
}

func testTransactions(t *testing.T, store Store) {
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := store.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.Categories().Create(ctx, category("a", "A", nil)))

		// Nested scopes join the outer transaction.
		return tx.WithTx(ctx, func(inner Store) error {
			require.NoError(t, inner.Categories().Create(ctx, category("b", "B", nil)))
			return errAbort
		})
	})
	assert.ErrorIs(t, err, errAbort)

	all, err := store.Categories().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rolled back writes are not visible")

	err = store.WithTx(ctx, func(tx Store) error {
		if err := tx.Categories().Create(ctx, category("a", "A", nil)); err != nil {
			return err
		}
		locked, err := tx.Categories().LockByID(ctx, "a")
		if err != nil {
			return err
		}
		require.NotNil(t, locked)
		a := "a"
		return tx.Categories().Create(ctx, category("b", "B", &a))
	})
	require.NoError(t, err)

	all, err = store.Categories().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NoError(t, store.Ping(ctx))
}
