package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const groupsInviteCodeKey = "groups_invite_code_key"

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g group.Group) (group.Group, error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return group.Group{}, fmt.Errorf("begin tx create group: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("groups", groupInsertModel{
		Name:       g.Name,
		InviteCode: g.InviteCode,
		CreatorID:  g.CreatorID,
		CreatedAt:  g.CreatedAt,
	}, "RETURNING *")
	if err != nil {
		return group.Group{}, fmt.Errorf("build create group query: %w", err)
	}
	var row groupTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err, groupsInviteCodeKey) {
			return group.Group{}, group.ErrInviteCodeTaken
		}
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}

	if err := groupTables.insertLeagues(ctx, tx, row.ID, g.Leagues); err != nil {
		return group.Group{}, err
	}
	if _, err := groupTables.addMember(ctx, tx, row.ID, row.CreatorID); err != nil {
		return group.Group{}, err
	}

	if err := tx.Commit(); err != nil {
		return group.Group{}, fmt.Errorf("commit create group tx: %w", err)
	}
	return groupFromRow(row, g.Leagues), nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (group.Group, bool, error) {
	return r.getOne(ctx, "get group by id", qb.Eq("id", id))
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, code string) (group.Group, bool, error) {
	return r.getOne(ctx, "get group by invite code", qb.Eq("invite_code", code))
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID int64) ([]group.Group, error) {
	query, args, err := qb.Select("g.*").
		From("groups g").
		Join("group_members mb", "mb.group_id = g.id").
		Where(qb.Eq("mb.user_id", userID)).
		OrderBy("g.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list groups by user query: %w", err)
	}
	var rows []groupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	leagues, err := groupTables.loadLeagues(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupFromRow(row, leagues[row.ID]))
	}
	return out, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return groupTables.addMember(ctx, r.db, groupID, userID)
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return groupTables.isMember(ctx, r.db, groupID, userID)
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID int64) ([]group.Member, error) {
	rows, err := groupTables.listMembers(ctx, r.db, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]group.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, group.Member{UserID: row.UserID, Name: row.Name, Email: row.Email, JoinedAt: row.JoinedAt})
	}
	return out, nil
}

func (r *GroupRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").Where(conds...).ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build %s query: %w", op, err)
	}
	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("%s: %w", op, err)
	}
	leagues, err := groupTables.loadLeagues(ctx, r.db, []int64{row.ID})
	if err != nil {
		return group.Group{}, false, err
	}
	return groupFromRow(row, leagues[row.ID]), true, nil
}
