package service

import (
	"context"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
)

// unlimitedDepth expands a subtree all the way down.
const unlimitedDepth = -1

// categoryTree indexes one snapshot of every category for view building.
type categoryTree struct {
	all      []model.Category
	byID     map[string]model.Category
	children map[string][]model.Category
	roots    []model.Category
}

// newCategoryTree indexes all. Children keep the order of all.
func newCategoryTree(all []model.Category) *categoryTree {
	t := &categoryTree{
		all:      all,
		byID:     make(map[string]model.Category, len(all)),
		children: make(map[string][]model.Category),
		roots:    []model.Category{},
	}
	for _, c := range all {
		t.byID[c.ID] = c
		if c.ParentID == nil {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
	}
	return t
}

// view resolves c's parent and its children down to depth levels.
func (t *categoryTree) view(c model.Category, depth int) model.CategoryView {
	return t.viewWithin(c, depth, map[string]bool{})
}

func (t *categoryTree) viewWithin(c model.Category, depth int, path map[string]bool) model.CategoryView {
	v := model.CategoryView{Category: c, Children: []model.CategoryView{}}
	if c.ParentID != nil {
		if parent, ok := t.byID[*c.ParentID]; ok {
			v.Parent = &parent
		}
	}

	if depth == 0 || path[c.ID] {
		return v
	}

	path[c.ID] = true
	for _, child := range t.children[c.ID] {
		v.Children = append(v.Children, t.viewWithin(child, depth-1, path))
	}
	delete(path, c.ID)

	return v
}

// ancestorOf reports whether id appears on the parent chain starting at parentID
// (parentID included). The walk stops on a chain that loops without reaching id.
func ancestorOf(ctx context.Context, categories repository.CategoryRepository, id, parentID string) (bool, error) {
	visited := map[string]bool{}
	for current := parentID; current != ""; {
		if current == id {
			return true, nil
		}
		if visited[current] {
			return false, nil
		}
		visited[current] = true

		c, err := categories.GetByID(ctx, current)
		if err != nil {
			return false, storeError(err)
		}
		if c == nil || c.ParentID == nil {
			return false, nil
		}
		current = *c.ParentID
	}
	return false, nil
}

// deletionOrder lists rootID and all its descendants children-first,
// so each id comes after every id beneath it.
func deletionOrder(ctx context.Context, categories repository.CategoryRepository, rootID string) ([]string, error) {
	type frame struct {
		id       string
		expanded bool
	}

	order := []string{}
	visited := map[string]bool{rootID: true}
	stack := []frame{{id: rootID}}

	for len(stack) > 0 {
		top := len(stack) - 1
		if stack[top].expanded {
			order = append(order, stack[top].id)
			stack = stack[:top]
			continue
		}
		stack[top].expanded = true

		id := stack[top].id
		children, err := categories.GetByParent(ctx, &id)
		if err != nil {
			return nil, storeError(err)
		}
		for i := len(children) - 1; i >= 0; i-- {
			if visited[children[i].ID] {
				continue
			}
			visited[children[i].ID] = true
			stack = append(stack, frame{id: children[i].ID})
		}
	}

	return order, nil
}
