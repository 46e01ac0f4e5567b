package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

// cohortTables names the league and member tables of groups or competitions.
type cohortTables struct {
	leagues  string
	members  string
	ownerCol string
}

var (
	groupTables       = cohortTables{leagues: "group_leagues", members: "group_members", ownerCol: "group_id"}
	competitionTables = cohortTables{leagues: "competition_leagues", members: "competition_members", ownerCol: "competition_id"}
)

func (t cohortTables) insertLeagues(ctx context.Context, exec sqlx.ExtContext, ownerID int64, leagues []match.League) error {
	if len(leagues) == 0 {
		return nil
	}
	builder := qb.InsertInto(t.leagues).Columns(t.ownerCol, "league_id", "league_name", "league_logo", "season")
	for _, l := range leagues {
		builder.Values(ownerID, l.ID, l.Name, l.Logo, l.Season)
	}
	query, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", t.leagues, err)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", t.leagues, err)
	}
	return nil
}

// addMember reports whether a row was inserted.
func (t cohortTables) addMember(ctx context.Context, exec sqlx.ExtContext, ownerID, userID int64) (bool, error) {
	query, args, err := qb.InsertInto(t.members).
		Columns(t.ownerCol, "user_id").
		Values(ownerID, userID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build insert %s query: %w", t.members, err)
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", t.members, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s rows affected: %w", t.members, err)
	}
	return n > 0, nil
}

func (t cohortTables) loadLeagues(ctx context.Context, q sqlx.QueryerContext, ownerIDs []int64) (map[int64][]match.League, error) {
	out := make(map[int64][]match.League, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select(t.ownerCol+" AS owner_id", "league_id", "league_name", "league_logo", "season").
		From(t.leagues).
		Where(qb.Expr(t.ownerCol+" = ANY(?)", pq.Array(ownerIDs))).
		OrderBy(t.ownerCol, "league_id", "season").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", t.leagues, err)
	}
	var rows []cohortLeagueRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.leagues, err)
	}
	for _, row := range rows {
		out[row.OwnerID] = append(out[row.OwnerID], row.toDomain())
	}
	return out, nil
}

func (t cohortTables) isMember(ctx context.Context, q sqlx.QueryerContext, ownerID, userID int64) (bool, error) {
	query, args, err := qb.Select("1").From(t.members).
		Where(qb.Eq(t.ownerCol, ownerID), qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s membership query: %w", t.members, err)
	}
	var one int
	if err := sqlx.GetContext(ctx, q, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s membership: %w", t.members, err)
	}
	return true, nil
}

func (t cohortTables) listMembers(ctx context.Context, q sqlx.QueryerContext, ownerID int64) ([]memberRow, error) {
	query, args, err := qb.Select("mb.user_id", "u.name", "u.email", "mb.joined_at").
		From(t.members+" mb").
		Join("users u", "u.id = mb.user_id").
		Where(qb.Eq("mb."+t.ownerCol, ownerID)).
		OrderBy("mb.joined_at", "mb.user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", t.members, err)
	}
	var rows []memberRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.members, err)
	}
	return rows, nil
}
