package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const matchColumns = "id, home_team, away_team, home_team_logo, away_team_logo, kickoff_at, status, " +
	"score_home, score_away, league_id, league_name, league_logo, season, round"

// upsertMatchesSuffix keeps a stored score when the row has none. Fixture sync
// sends rows without scores; ApplyMatchResult writes them with the points.
const upsertMatchesSuffix = `ON CONFLICT (id) DO UPDATE SET
	home_team = EXCLUDED.home_team,
	away_team = EXCLUDED.away_team,
	home_team_logo = EXCLUDED.home_team_logo,
	away_team_logo = EXCLUDED.away_team_logo,
	kickoff_at = EXCLUDED.kickoff_at,
	status = EXCLUDED.status,
	score_home = COALESCE(EXCLUDED.score_home, matches.score_home),
	score_away = COALESCE(EXCLUDED.score_away, matches.score_away),
	league_id = EXCLUDED.league_id,
	league_name = EXCLUDED.league_name,
	league_logo = EXCLUDED.league_logo,
	season = EXCLUDED.season,
	round = EXCLUDED.round,
	updated_at = NOW()`

// upsertBatchSize keeps a batch well under the 65535 bind parameter limit.
const upsertBatchSize = 500

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns).From("matches").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}
	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByIDs(ctx context.Context, ids []int64) ([]match.Match, error) {
	if len(ids) == 0 {
		return []match.Match{}, nil
	}
	return r.list(ctx, "list matches by ids", qb.Expr("id = ANY(?)", pq.Array(ids)))
}

func (r *MatchRepository) ListKickoffAfter(ctx context.Context, t time.Time) ([]match.Match, error) {
	return r.list(ctx, "list matches kickoff after", qb.Gt("kickoff_at", t.UTC()))
}

func (r *MatchRepository) ListKickoffBetween(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	return r.list(ctx, "list matches kickoff between",
		qb.Gt("kickoff_at", from.UTC()),
		qb.Lte("kickoff_at", to.UTC()),
	)
}

func (r *MatchRepository) Upsert(ctx context.Context, matches []match.Match) (int, error) {
	matches = dedupeMatches(matches)
	if len(matches) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	total := 0
	for start := 0; start < len(matches); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(matches))
		models := make([]any, 0, end-start)
		for _, m := range matches[start:end] {
			models = append(models, matchToRow(m))
		}

		query, args, err := qb.InsertModels("matches", models, upsertMatchesSuffix)
		if err != nil {
			return 0, fmt.Errorf("build upsert matches query: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("upsert matches: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected upsert matches: %w", err)
		}
		total += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return total, nil
}

func (r *MatchRepository) list(ctx context.Context, op string, conds ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(conds...).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

// dedupeMatches keeps the last row per id; ON CONFLICT cannot touch the same
// row twice in one statement.
func dedupeMatches(items []match.Match) []match.Match {
	index := make(map[int64]int, len(items))
	out := make([]match.Match, 0, len(items))
	for _, m := range items {
		if i, seen := index[m.ID]; seen {
			out[i] = m
			continue
		}
		index[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}
