package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// Member directory, consumed by staff-assisted booking and member search.
	FindActiveMemberByEmail(ctx context.Context, email string) (*User, error)
	SearchMembers(ctx context.Context, query string) ([]MemberSummary, error)
}
