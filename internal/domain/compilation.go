package domain

import "context"

// Compilation is a curated, optionally pinned selection of events.
// swagger:model Compilation
type Compilation struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Pinned bool     `json:"pinned"`
	Events []*Event `json:"events"`
}

// CompilationPatch carries the optional fields of a compilation update.
// A nil EventIDs leaves the event set unchanged; an empty one clears it.
type CompilationPatch struct {
	Title    *string
	Pinned   *bool
	EventIDs []string
}

// CompilationRepository defines the interface for compilation storage.
type CompilationRepository interface {
	Create(ctx context.Context, comp *Compilation, eventIDs []string) error
	GetByID(ctx context.Context, id string) (*Compilation, error)
	Update(ctx context.Context, comp *Compilation, eventIDs []string) error
	List(ctx context.Context, pinned *bool, from, size int) ([]*Compilation, error)
	Delete(ctx context.Context, id string) error
}

// CompilationService defines compilation curation.
type CompilationService interface {
	Create(ctx context.Context, title string, pinned bool, eventIDs []string) (*Compilation, error)
	Update(ctx context.Context, id string, patch *CompilationPatch) (*Compilation, error)
	GetByID(ctx context.Context, id string) (*Compilation, error)
	List(ctx context.Context, pinned *bool, from, size int) ([]*Compilation, error)
	Delete(ctx context.Context, id string) error
}
