package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const usersEmailKey = "users_email_key"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	insertModel := userInsertModel{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	query, args, err := qb.InsertModel("users", insertModel, "RETURNING *")
	if err != nil {
		return user.User{}, fmt.Errorf("build create user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err, usersEmailKey) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return userFromRow(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (user.User, bool, error) {
	return r.getOne(ctx, "get user by id", qb.Eq("id", id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.getOne(ctx, "get user by email", qb.Eq("email", email))
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	query, args, err := qb.Select("*").From("users").
		Where(qb.Expr("id = ANY(?)", pq.Array(ids))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users by ids query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	return out, nil
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	query, args, err := qb.Select("id").From("users").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user ids query: %w", err)
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.updateColumn(ctx, id, "name", name)
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	err := r.updateColumn(ctx, id, "email", email)
	if isUniqueViolation(err, usersEmailKey) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *UserRepository) updateColumn(ctx context.Context, id int64, column string, value any) error {
	query, args, err := qb.Update("users").Set(column, value).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update user %s query: %w", column, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, op string, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").Where(cond).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build %s query: %w", op, err)
	}
	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return userFromRow(row), true, nil
}
