package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// memoryState holds every record of an in-memory store.
type memoryState struct {
	categories map[string]model.Category
	products   map[string]model.Product
	users      map[string]model.User
}

func newMemoryState() *memoryState {
	return &memoryState{
		categories: make(map[string]model.Category),
		products:   make(map[string]model.Product),
		users:      make(map[string]model.User),
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		categories: maps.Clone(s.categories),
		products:   make(map[string]model.Product, len(s.products)),
		users:      maps.Clone(s.users),
	}
	for id, p := range s.products {
		c.products[id] = p.Clone()
	}
	return c
}

// memoryDB guards one memoryState.
type memoryDB struct {
	mu    sync.RWMutex
	state *memoryState
}

// memoryStore implements Store in process memory.
// Transactions are serialized and run against a private copy of the state
// that replaces the shared state only when fn succeeds.
type memoryStore struct {
	root   *memoryDB
	db     *memoryDB
	txMu   *sync.Mutex
	inTx   bool
	logger zerolog.Logger
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore(logger zerolog.Logger) Store {
	db := &memoryDB{state: newMemoryState()}
	return &memoryStore{
		root:   db,
		db:     db,
		txMu:   &sync.Mutex{},
		logger: logger.With().Str("repository", "memory").Logger(),
	}
}

func (s *memoryStore) Categories() CategoryRepository { return memoryCategories{s.db} }
func (s *memoryStore) Products() ProductRepository     { return memoryProducts{s.db} }
func (s *memoryStore) Users() UserRepository           { return memoryUsers{s.db} }

// WithTx runs fn against a copy of the state and commits it when fn succeeds.
func (s *memoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.root.mu.RLock()
	working := &memoryDB{state: s.root.state.clone()}
	s.root.mu.RUnlock()

	tx := &memoryStore{root: s.root, db: working, txMu: s.txMu, inTx: true, logger: s.logger}
	if err := fn(tx); err != nil {
		s.logger.Debug().Err(err).Msg("transaction rolled back")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.root.mu.Lock()
	s.root.state = working.state
	s.root.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}

func sortedValues[T any](m map[string]T, key func(T) string, id func(T) string) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b T) int {
		return cmp.Or(cmp.Compare(key(a), key(b)), cmp.Compare(id(a), id(b)))
	})
	return out
}

type memoryCategories struct{ db *memoryDB }

func categoryName(c model.Category) string { return c.Name }
func categoryID(c model.Category) string   { return c.ID }

func (r memoryCategories) GetAll(ctx context.Context) ([]model.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return sortedValues(r.db.state.categories, categoryName, categoryID), nil
}

func (r memoryCategories) GetByID(ctx context.Context, id string) (*model.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.state.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memoryCategories) LockByID(ctx context.Context, id string) (*model.Category, error) {
	return r.GetByID(ctx, id)
}

func (r memoryCategories) GetByParent(ctx context.Context, parentID *string) ([]model.Category, error) {
	all, _ := r.GetAll(ctx)
	children := []model.Category{}
	for _, c := range all {
		switch {
		case parentID == nil && c.ParentID == nil:
			children = append(children, c)
		case parentID != nil && c.ParentID != nil && *c.ParentID == *parentID:
			children = append(children, c)
		}
	}
	return children, nil
}

func (r memoryCategories) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	found := []string{}
	for _, id := range ids {
		if _, ok := r.db.state.categories[id]; ok && !slices.Contains(found, id) {
			found = append(found, id)
		}
	}
	return found, nil
}

func (r memoryCategories) Create(ctx context.Context, c *model.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.categories[c.ID]; ok {
		return ErrDuplicateKey
	}
	if !r.parentExists(c) {
		return ErrBrokenReference
	}
	r.db.state.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) Update(ctx context.Context, c *model.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.categories[c.ID]; !ok {
		return ErrRecordNotFound
	}
	if !r.parentExists(c) {
		return ErrBrokenReference
	}
	r.db.state.categories[c.ID] = *c
	return nil
}

func (r memoryCategories) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.categories[id]; !ok {
		return ErrRecordNotFound
	}
	for _, c := range r.db.state.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return ErrBrokenReference
		}
	}
	delete(r.db.state.categories, id)
	return nil
}

// parentExists mirrors the parent_id foreign key. Callers hold the lock.
func (r memoryCategories) parentExists(c *model.Category) bool {
	if c.ParentID == nil {
		return true
	}
	_, ok := r.db.state.categories[*c.ParentID]
	return ok
}

type memoryProducts struct{ db *memoryDB }

func productName(p model.Product) string { return p.Name }
func productID(p model.Product) string   { return p.ID }

func (r memoryProducts) GetAll(ctx context.Context) ([]model.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	products := sortedValues(r.db.state.products, productName, productID)
	for i := range products {
		products[i] = products[i].Clone()
	}
	return products, nil
}

func (r memoryProducts) GetByID(ctx context.Context, id string) (*model.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.state.products[id]
	if !ok {
		return nil, nil
	}
	p = p.Clone()
	return &p, nil
}

func (r memoryProducts) LockByID(ctx context.Context, id string) (*model.Product, error) {
	return r.GetByID(ctx, id)
}

func (r memoryProducts) GetByCategory(ctx context.Context, categoryID string) ([]model.Product, error) {
	all, _ := r.GetAll(ctx)
	matched := []model.Product{}
	for _, p := range all {
		if p.HasCategory(categoryID) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r memoryProducts) RemoveCategoryRefs(ctx context.Context, categoryIDs []string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var changed int64
	for id, p := range r.db.state.products {
		kept := slices.DeleteFunc(slices.Clone(p.CategoryIDs), func(c string) bool {
			return slices.Contains(categoryIDs, c)
		})
		if len(kept) != len(p.CategoryIDs) {
			p.CategoryIDs = kept
			r.db.state.products[id] = p
			changed++
		}
	}
	return changed, nil
}

func (r memoryProducts) Create(ctx context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.products[p.ID]; ok {
		return ErrDuplicateKey
	}
	r.db.state.products[p.ID] = p.Clone()
	return nil
}

func (r memoryProducts) Update(ctx context.Context, p *model.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.state.products[p.ID]
	if !ok {
		return ErrRecordNotFound
	}
	updated := p.Clone()
	updated.CreatedAt = existing.CreatedAt
	r.db.state.products[p.ID] = updated
	return nil
}

func (r memoryProducts) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.products[id]; !ok {
		return ErrRecordNotFound
	}
	delete(r.db.state.products, id)
	return nil
}

type memoryUsers struct{ db *memoryDB }

func (r memoryUsers) GetAll(ctx context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	users := slices.Collect(maps.Values(r.db.state.users))
	slices.SortFunc(users, func(a, b model.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return users, nil
}

func (r memoryUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.state.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memoryUsers) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.state.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) phoneTaken(phone, exceptID string) bool {
	for _, u := range r.db.state.users {
		if u.Phone == phone && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r memoryUsers) Create(ctx context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.users[u.ID]; ok || r.phoneTaken(u.Phone, u.ID) {
		return ErrDuplicateKey
	}
	r.db.state.users[u.ID] = *u
	return nil
}

func (r memoryUsers) Update(ctx context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.users[u.ID]; !ok {
		return ErrRecordNotFound
	}
	if r.phoneTaken(u.Phone, u.ID) {
		return ErrDuplicateKey
	}
	r.db.state.users[u.ID] = *u
	return nil
}

func (r memoryUsers) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.users[id]; !ok {
		return ErrRecordNotFound
	}
	delete(r.db.state.users, id)
	return nil
}
