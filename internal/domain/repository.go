package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	// Ensure returns the stored user with u.ID, inserting u when absent.
	// The boolean reports whether a row was created.
	Ensure(ctx context.Context, u User) (*User, bool, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// ContributionRepository persists contributions. Every method is scoped to an
// owner; records of other users are invisible.
type ContributionRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Contribution, error)
	Create(ctx context.Context, c Contribution) (*Contribution, error)
	// Delete removes the record id owned by ownerID, or returns ErrNotFound.
	Delete(ctx context.Context, ownerID, id string) error
}
