package model

import "time"

// Category is a node in the catalog tree. A nil ParentID marks a root category.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"notblank,max=200"`
	ParentID  *string   `json:"parentId" db:"parent_id"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	ImageURL  *string   `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryView is a category with its parent and children resolved.
// How deep Children goes depends on the operation that built the view.
type CategoryView struct {
	Category
	Parent   *Category      `json:"parent"`
	Children []CategoryView `json:"children"`
}

// DeleteCategoryResult reports what a category delete removed.
type DeleteCategoryResult struct {
	DeletedIDs       []string `json:"deletedIds"`
	DetachedProducts int64    `json:"detachedProducts"`
}
