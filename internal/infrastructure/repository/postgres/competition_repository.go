package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const competitionsCodeKey = "competitions_code_key"

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) Create(ctx context.Context, c competition.Competition) (competition.Competition, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("begin tx create competition: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("competitions", competitionInsertModel{
		Name:      c.Name,
		Code:      c.Code,
		IsPublic:  c.IsPublic,
		CreatorID: c.CreatorID,
		CreatedAt: c.CreatedAt,
	}, "RETURNING *")
	if err != nil {
		return competition.Competition{}, fmt.Errorf("build create competition query: %w", err)
	}
	var row competitionTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err, competitionsCodeKey) {
			return competition.Competition{}, competition.ErrCodeTaken
		}
		return competition.Competition{}, fmt.Errorf("create competition: %w", err)
	}

	if err := competitionTables.insertLeagues(ctx, tx, row.ID, c.Leagues); err != nil {
		return competition.Competition{}, err
	}
	if _, err := competitionTables.addMember(ctx, tx, row.ID, row.CreatorID); err != nil {
		return competition.Competition{}, err
	}

	if err := tx.Commit(); err != nil {
		return competition.Competition{}, fmt.Errorf("commit create competition tx: %w", err)
	}
	return competitionFromRow(row, c.Leagues), nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id int64) (competition.Competition, bool, error) {
	return r.getOne(ctx, "get competition by id", qb.Eq("id", id))
}

func (r *CompetitionRepository) GetByCode(ctx context.Context, code string) (competition.Competition, bool, error) {
	return r.getOne(ctx, "get competition by code", qb.Eq("code", code))
}

func (r *CompetitionRepository) ListByUser(ctx context.Context, userID int64) ([]competition.Competition, error) {
	return r.list(ctx, "list competitions by user",
		qb.Select("c.*").
			From("competitions c").
			Join("competition_members mb", "mb.competition_id = c.id").
			Where(qb.Eq("mb.user_id", userID)).
			OrderBy("c.created_at DESC", "c.id DESC"))
}

func (r *CompetitionRepository) ListPublic(ctx context.Context) ([]competition.Competition, error) {
	return r.list(ctx, "list public competitions",
		qb.Select("c.*").
			From("competitions c").
			Where(qb.Eq("c.is_public", true)).
			OrderBy("c.created_at DESC", "c.id DESC"))
}

func (r *CompetitionRepository) AddMember(ctx context.Context, competitionID, userID int64) error {
	added, err := competitionTables.addMember(ctx, r.db, competitionID, userID)
	if err != nil {
		return err
	}
	if !added {
		return competition.ErrAlreadyMember
	}
	return nil
}

func (r *CompetitionRepository) IsMember(ctx context.Context, competitionID, userID int64) (bool, error) {
	return competitionTables.isMember(ctx, r.db, competitionID, userID)
}

func (r *CompetitionRepository) ListMembers(ctx context.Context, competitionID int64) ([]competition.Member, error) {
	rows, err := competitionTables.listMembers(ctx, r.db, competitionID)
	if err != nil {
		return nil, err
	}
	out := make([]competition.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, competition.Member{UserID: row.UserID, Name: row.Name, Email: row.Email, JoinedAt: row.JoinedAt})
	}
	return out, nil
}

func (r *CompetitionRepository) CountMembers(ctx context.Context, competitionIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(competitionIDs))
	if len(competitionIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("competition_id", "COUNT(*) AS members").
		From("competition_members").
		Where(qb.Expr("competition_id = ANY(?)", pq.Array(competitionIDs))).
		GroupBy("competition_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count competition members query: %w", err)
	}
	var rows []struct {
		CompetitionID int64 `db:"competition_id"`
		Members       int   `db:"members"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count competition members: %w", err)
	}
	for _, row := range rows {
		out[row.CompetitionID] = row.Members
	}
	return out, nil
}

func (r *CompetitionRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("competitions").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete competition query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete competition: %w", err)
	}
	return nil
}

func (r *CompetitionRepository) ListLeagues(ctx context.Context) ([]match.League, error) {
	query, args, err := qb.Select("DISTINCT ON (league_id, season) 0 AS owner_id", "league_id", "league_name", "league_logo", "season").
		From("competition_leagues").
		OrderBy("league_id", "season").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competition leagues query: %w", err)
	}
	var rows []cohortLeagueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list competition leagues: %w", err)
	}
	out := make([]match.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CompetitionRepository) list(ctx context.Context, op string, builder *qb.SelectBuilder) ([]competition.Competition, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	leagues, err := competitionTables.loadLeagues(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, competitionFromRow(row, leagues[row.ID]))
	}
	return out, nil
}

func (r *CompetitionRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").Where(conds...).ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build %s query: %w", op, err)
	}
	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("%s: %w", op, err)
	}
	leagues, err := competitionTables.loadLeagues(ctx, r.db, []int64{row.ID})
	if err != nil {
		return competition.Competition{}, false, err
	}
	return competitionFromRow(row, leagues[row.ID]), true, nil
}
