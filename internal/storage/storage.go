package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"catalog-api/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Uploader stores raw file payloads and returns their public URLs.
type Uploader interface {
	// Upload stores objs under folder and returns one URL per object, in order.
	// Either every object is stored or an error is returned.
	Upload(ctx context.Context, folder string, objs []model.Upload) ([]string, error)
}

// putter writes a single object under key and returns its URL.
type putter interface {
	put(ctx context.Context, key string, obj model.Upload) (string, error)
}

// Limits bounds what an upload request may contain.
type Limits struct {
	MaxFileBytes      int64
	MaxFiles          int
	AllowedExtensions []string
}

// DefaultLimits returns the image limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:      5 << 20,
		MaxFiles:          5,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

// Check rejects uploads that break the limits before anything is written.
// Violations are reported as validation errors.
func (l Limits) Check(objs []model.Upload) error {
	if l.MaxFiles > 0 && len(objs) > l.MaxFiles {
		return limitError("too many files: %d (max %d)", len(objs), l.MaxFiles)
	}

	for _, obj := range objs {
		if len(obj.Data) == 0 {
			return limitError("file %q is empty", obj.Filename)
		}
		if l.MaxFileBytes > 0 && int64(len(obj.Data)) > l.MaxFileBytes {
			return limitError("file %q is %d bytes (max %d)", obj.Filename, len(obj.Data), l.MaxFileBytes)
		}
		ext := strings.ToLower(filepath.Ext(obj.Filename))
		if len(l.AllowedExtensions) > 0 && !slices.Contains(l.AllowedExtensions, ext) {
			return limitError("file type %q is not allowed", ext)
		}
	}

	return nil
}

func limitError(format string, args ...any) error {
	return model.ErrValidation.WithMessage(fmt.Sprintf(format, args...))
}

// objectKey generates a unique key that keeps the original extension.
func objectKey(prefix, folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return prefix + path.Join(folder, uuid.NewString()+ext)
}

// uploadAll checks limits and writes every object concurrently.
// The first failure cancels the remaining writes.
func uploadAll(ctx context.Context, p putter, limits Limits, prefix, folder string, objs []model.Upload) ([]string, error) {
	if len(objs) == 0 {
		return []string{}, nil
	}

	if err := limits.Check(objs); err != nil {
		return nil, err
	}

	urls := make([]string, len(objs))
	g, ctx := errgroup.WithContext(ctx)
	for i, obj := range objs {
		g.Go(func() error {
			url, err := p.put(ctx, objectKey(prefix, folder, obj.Filename), obj)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}
