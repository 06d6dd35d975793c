package domain

import "context"

// Category classifies events.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines the interface for category storage.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, category *Category) error
	List(ctx context.Context, from, size int) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

// CategoryService defines category curation. Deleting a category that still
// has events fails with ErrConflict.
type CategoryService interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, id, name string) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, from, size int) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}
