package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

type PasswordResetRepository struct {
	db *sqlx.DB
}

func NewPasswordResetRepository(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, t passwordreset.Token) (passwordreset.Token, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("password_reset_tokens", resetTokenInsertModel{
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      false,
		CreatedAt: t.CreatedAt,
	}, "RETURNING *")
	if err != nil {
		return passwordreset.Token{}, fmt.Errorf("build create reset token query: %w", err)
	}
	var row resetTokenTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return passwordreset.Token{}, fmt.Errorf("create reset token: %w", err)
	}
	return resetTokenFromRow(row), nil
}

func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (passwordreset.Token, bool, error) {
	query, args, err := qb.Select("*").From("password_reset_tokens").Where(qb.Eq("token", token)).ToSQL()
	if err != nil {
		return passwordreset.Token{}, false, fmt.Errorf("build get reset token query: %w", err)
	}
	var row resetTokenTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return passwordreset.Token{}, false, nil
		}
		return passwordreset.Token{}, false, fmt.Errorf("get reset token: %w", err)
	}
	return resetTokenFromRow(row), true, nil
}

// Redeem flips used with a guarded update so two concurrent redemptions
// cannot both succeed.
func (r *PasswordResetRepository) Redeem(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx redeem reset token: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	markQuery, markArgs, err := qb.Update("password_reset_tokens").
		Set("used", true).
		Where(qb.Eq("id", tokenID), qb.Eq("used", false)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark reset token used query: %w", err)
	}
	res, err := tx.ExecContext(ctx, markQuery, markArgs...)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reset token used rows affected: %w", err)
	}
	if n == 0 {
		return passwordreset.ErrTokenUsed
	}

	hashQuery, hashArgs, err := qb.Update("users").
		Set("password_hash", passwordHash).
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update password hash query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, hashQuery, hashArgs...); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit redeem reset token tx: %w", err)
	}
	return nil
}
