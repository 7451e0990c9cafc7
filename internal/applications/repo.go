package applications

import "context"

// ListFilter narrows a user's applications.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// Repo defines persistence operations for applications. All lookups are
// scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, app Application) error
	Update(ctx context.Context, app Application) error
	GetByID(ctx context.Context, userID, id string) (Application, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Application, error)
	Delete(ctx context.Context, userID, id string) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
