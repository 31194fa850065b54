package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// diskUploader implements Uploader by writing files under a local directory.
type diskUploader struct {
	dir     string
	baseURL string
	limits  Limits
	logger  zerolog.Logger
}

// NewDiskUploader creates an uploader that stores files in dir and links them under baseURL.
func NewDiskUploader(dir, baseURL string, limits Limits, logger zerolog.Logger) Uploader {
	return &diskUploader{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		limits:  limits,
		logger:  logger.With().Str("component", "disk-uploader").Logger(),
	}
}

// Upload writes every object to disk.
func (u *diskUploader) Upload(ctx context.Context, folder string, objs []model.Upload) ([]string, error) {
	urls, err := uploadAll(ctx, u, u.limits, "", folder, objs)
	if err != nil {
		u.logger.Error().Err(err).Str("folder", folder).Msg("disk upload failed")
		return nil, err
	}

	u.logger.Debug().Str("folder", folder).Int("count", len(urls)).Msg("objects written to disk")
	return urls, nil
}

func (u *diskUploader) put(ctx context.Context, key string, obj model.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(dst, obj.Data, 0o644); err != nil {
		u.logger.Error().Err(err).Str("file", dst).Msg("failed to write upload")
		return "", fmt.Errorf("failed to write upload %s: %w", dst, err)
	}

	return u.baseURL + "/" + key, nil
}
