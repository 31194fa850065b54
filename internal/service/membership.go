package service

import (
	"context"
	"slices"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
)

// NormalizeCategoryIDs trims every id and drops empty and repeated entries,
// keeping the first occurrence order. The result is never nil.
func NormalizeCategoryIDs(ids []string) []string {
	normalized := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized
}

// partitionCategoryIDs splits ids into those that exist and those that do not.
func partitionCategoryIDs(ctx context.Context, categories repository.CategoryRepository, ids []string) (found, unknown []string, err error) {
	if len(ids) == 0 {
		return []string{}, nil, nil
	}

	existing, err := categories.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, nil, storeError(err)
	}

	found = make([]string, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(existing, id) {
			found = append(found, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return found, unknown, nil
}

// requireCategories applies the strict policy: every id must exist.
func requireCategories(ctx context.Context, categories repository.CategoryRepository, ids []string) error {
	found, unknown, err := partitionCategoryIDs(ctx, categories, ids)
	if err != nil {
		return err
	}

	if len(unknown) > 0 {
		return model.ErrUnknownCategories.WithDetails(map[string]any{
			"providedCount": len(ids),
			"foundCount":    len(found),
			"unknownIds":    unknown,
		})
	}
	return nil
}

// filterCategories applies the lenient policy: unknown ids are dropped and
// only an entirely unknown, non-empty set is an error.
func filterCategories(ctx context.Context, categories repository.CategoryRepository, ids []string) ([]string, error) {
	found, unknown, err := partitionCategoryIDs(ctx, categories, ids)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 && len(found) == 0 {
		return nil, model.ErrNoValidCategories.WithDetails(map[string]any{
			"providedCount": len(ids),
			"unknownIds":    unknown,
		})
	}
	return found, nil
}
