package domain

import (
	"context"
	"time"
)

// User represents a registered user.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, ids []string, from, size int) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// UserService defines admin-side user management.
type UserService interface {
	Create(ctx context.Context, user *User) (*User, error)
	List(ctx context.Context, ids []string, from, size int) ([]*User, error)
	Delete(ctx context.Context, id string) error
}
