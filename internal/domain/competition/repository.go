package competition

import (
	"context"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
)

type Repository interface {
	// Create stores the competition, its leagues and the creator membership in
	// one transaction. It returns ErrCodeTaken on a code collision.
	Create(ctx context.Context, c Competition) (Competition, error)
	GetByID(ctx context.Context, id int64) (Competition, bool, error)
	GetByCode(ctx context.Context, code string) (Competition, bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Competition, error)
	ListPublic(ctx context.Context) ([]Competition, error)
	// AddMember returns ErrAlreadyMember when the user already joined.
	AddMember(ctx context.Context, competitionID, userID int64) error
	IsMember(ctx context.Context, competitionID, userID int64) (bool, error)
	ListMembers(ctx context.Context, competitionID int64) ([]Member, error)
	CountMembers(ctx context.Context, competitionIDs []int64) (map[int64]int, error)
	// Delete cascades to leagues and members.
	Delete(ctx context.Context, id int64) error
	// ListLeagues returns the distinct leagues configured across competitions.
	ListLeagues(ctx context.Context) ([]match.League, error)
}
