package group

import "context"

type Repository interface {
	// Create stores the group, its leagues and the creator membership in one
	// transaction. It returns ErrInviteCodeTaken on a code collision.
	Create(ctx context.Context, g Group) (Group, error)
	GetByID(ctx context.Context, id int64) (Group, bool, error)
	GetByInviteCode(ctx context.Context, code string) (Group, bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Group, error)
	// AddMember reports false when the user was already a member.
	AddMember(ctx context.Context, groupID, userID int64) (bool, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	ListMembers(ctx context.Context, groupID int64) ([]Member, error)
}
