package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	store  repository.Store
	logger zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store repository.Store, logger zerolog.Logger) UserService {
	return &userService{
		store:  store,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// Register creates a user. Phones are unique.
func (s *userService) Register(ctx context.Context, in model.RegisterUserInput) (*model.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Password:  in.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.checkPhoneFree(ctx, tx, user.Phone, ""); err != nil {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		err = model.ErrConflict.WithMessage("Phone number already registered")
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to register user")
		return nil, storeError(err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate matches phone and password against the stored user.
func (s *userService) Authenticate(ctx context.Context, phone, password string) (*model.User, error) {
	user, err := s.store.Users().GetByPhone(ctx, phone)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up credentials")
		return nil, storeError(err)
	}

	if user == nil || subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		s.logger.Debug().Msg("invalid credentials")
		return nil, model.ErrUnauthenticated.WithMessage("Invalid phone or password")
	}

	return user, nil
}

// List returns every user.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get users")
		return nil, storeError(err)
	}
	return users, nil
}

// GetByID returns one user.
func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, storeError(err)
	}
	if user == nil {
		return nil, model.ErrUserMissing
	}
	return user, nil
}

// Update changes the non-empty fields of the caller's own record.
func (s *userService) Update(ctx context.Context, actorID, id string, in model.UpdateUserInput) (*model.User, error) {
	if actorID != id {
		return nil, model.ErrForbidden.WithMessage("Users can only update their own account")
	}

	var updated *model.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return model.ErrUserMissing
		}

		if name := strings.TrimSpace(in.Name); name != "" {
			user.Name = name
		}
		if phone := strings.TrimSpace(in.Phone); phone != "" && phone != user.Phone {
			if err := s.checkPhoneFree(ctx, tx, phone, user.ID); err != nil {
				return err
			}
			user.Phone = phone
		}
		if in.Password != "" {
			user.Password = in.Password
		}
		user.UpdatedAt = time.Now().UTC()

		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		err = model.ErrConflict.WithMessage("Phone number already registered")
	case isNotFound(err):
		err = model.ErrUserMissing
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, storeError(err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// Delete removes the caller's own record.
func (s *userService) Delete(ctx context.Context, actorID, id string) error {
	if actorID != id {
		return model.ErrForbidden.WithMessage("Users can only delete their own account")
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.Users().Delete(ctx, id)
	})
	if isNotFound(err) {
		return model.ErrUserMissing
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return storeError(err)
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// checkPhoneFree fails with CONFLICT when another user owns phone.
func (s *userService) checkPhoneFree(ctx context.Context, tx repository.Store, phone, exceptID string) error {
	owner, err := tx.Users().GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if owner != nil && owner.ID != exceptID {
		return model.ErrConflict.WithMessage("Phone number already registered")
	}
	return nil
}
