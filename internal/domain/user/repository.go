package user

import "context"

type Repository interface {
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateName(ctx context.Context, id int64, name string) error
	// UpdateEmail returns ErrEmailTaken on collision.
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
