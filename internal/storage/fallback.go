package storage

import (
	"context"
	"errors"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// fallbackUploader tries the primary uploader first, then falls back to the secondary.
type fallbackUploader struct {
	primary   Uploader
	secondary Uploader
	logger    zerolog.Logger
}

// NewFallbackUploader creates an uploader that tries primary first, then secondary.
// If primary is nil, only secondary is used.
func NewFallbackUploader(primary, secondary Uploader, logger zerolog.Logger) Uploader {
	return &fallbackUploader{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-uploader").Logger(),
	}
}

// Upload attempts the primary uploader, then falls back to the secondary one.
func (u *fallbackUploader) Upload(ctx context.Context, folder string, objs []model.Upload) ([]string, error) {
	if u.primary != nil {
		urls, err := u.primary.Upload(ctx, folder, objs)
		if err == nil {
			return urls, nil
		}
		if ctx.Err() != nil || errors.Is(err, model.ErrValidation) {
			return nil, err
		}

		u.logger.Warn().
			Err(err).
			Str("folder", folder).
			Msg("primary upload failed, falling back to secondary storage")
	}

	return u.secondary.Upload(ctx, folder, objs)
}
