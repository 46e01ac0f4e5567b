package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/scoring"
	qb "github.com/rogeliolopezcamara/quiniela-app/internal/platform/querybuilder"
)

const predictionsUserMatchKey = "predictions_user_match_key"

const predictionWithMatchColumns = "p.*, " +
	"m.home_team AS m_home_team, m.away_team AS m_away_team, " +
	"m.home_team_logo AS m_home_team_logo, m.away_team_logo AS m_away_team_logo, " +
	"m.kickoff_at AS m_kickoff_at, m.status AS m_status, " +
	"m.score_home AS m_score_home, m.score_away AS m_score_away, " +
	"m.league_id AS m_league_id, m.league_name AS m_league_name, m.league_logo AS m_league_logo, " +
	"m.season AS m_season, m.round AS m_round"

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	insertModel := predictionInsertModel{
		UserID:    p.UserID,
		MatchID:   p.MatchID,
		HomeGoals: p.Home,
		AwayGoals: p.Away,
		Points:    0,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.CreatedAt,
	}
	query, args, err := qb.InsertModel("predictions", insertModel, "RETURNING *")
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build create prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isUniqueViolation(err, predictionsUserMatchKey) {
			return prediction.Prediction{}, prediction.ErrDuplicate
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}
	return predictionFromRow(row), nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, id int64) (prediction.Prediction, bool, error) {
	return r.getOne(ctx, "get prediction by id", qb.Eq("id", id))
}

func (r *PredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (prediction.Prediction, bool, error) {
	return r.getOne(ctx, "get prediction by user and match", qb.Eq("user_id", userID), qb.Eq("match_id", matchID))
}

func (r *PredictionRepository) Update(ctx context.Context, id int64, home, away int) (prediction.Prediction, error) {
	query, args, err := qb.Update("predictions").
		Set("home_goals", home).
		Set("away_goals", away).
		Set("points", 0).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build update prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return prediction.Prediction{}, fmt.Errorf("update prediction: %w", err)
	}
	return predictionFromRow(row), nil
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID int64) ([]prediction.WithMatch, error) {
	query, args, err := qb.Select(predictionWithMatchColumns).
		From("predictions p").
		Join("matches m", "m.id = p.match_id").
		Where(qb.Eq("p.user_id", userID)).
		OrderBy("m.kickoff_at", "p.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by user query: %w", err)
	}

	var rows []predictionWithMatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	out := make([]prediction.WithMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PredictionRepository) ListMatchIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := qb.Select("match_id").From("predictions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predicted match ids query: %w", err)
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list predicted match ids: %w", err)
	}
	return ids, nil
}

func (r *PredictionRepository) ListPredictors(ctx context.Context, matchIDs []int64) (map[int64]map[int64]struct{}, error) {
	out := make(map[int64]map[int64]struct{})
	if len(matchIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("match_id", "user_id").From("predictions").
		Where(qb.Expr("match_id = ANY(?)", pq.Array(matchIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictors query: %w", err)
	}

	var rows []struct {
		MatchID int64 `db:"match_id"`
		UserID  int64 `db:"user_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictors: %w", err)
	}
	for _, row := range rows {
		users, ok := out[row.MatchID]
		if !ok {
			users = make(map[int64]struct{})
			out[row.MatchID] = users
		}
		users[row.UserID] = struct{}{}
	}
	return out, nil
}

func (r *PredictionRepository) SumPointsByUser(ctx context.Context, userID int64) (int, error) {
	query, args, err := qb.Select("COALESCE(SUM(points), 0)").From("predictions").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build sum points query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("sum points by user: %w", err)
	}
	return total, nil
}

func (r *PredictionRepository) ListRoundPoints(ctx context.Context, scope match.Scope, userIDs []int64) ([]ranking.Contribution, error) {
	conds := []qb.Condition{qb.IsNotNull("m.round"), qb.Neq("m.round", "")}
	if userIDs != nil {
		conds = append(conds, qb.Expr("p.user_id = ANY(?)", pq.Array(userIDs)))
	}
	if !scope.Unrestricted() {
		pairs := make([]qb.Condition, 0)
		for _, ls := range scope.LeagueSeasons() {
			pairs = append(pairs, qb.And(qb.Eq("m.league_id", ls.LeagueID), qb.Eq("m.season", ls.Season)))
		}
		conds = append(conds, qb.Or(pairs...))
	}

	query, args, err := qb.Select("p.user_id", "m.round", "COALESCE(SUM(p.points), 0) AS points").
		From("predictions p").
		Join("matches m", "m.id = p.match_id").
		Where(conds...).
		GroupBy("p.user_id", "m.round").
		OrderBy("p.user_id", "m.round").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list round points query: %w", err)
	}

	var rows []struct {
		UserID int64  `db:"user_id"`
		Round  string `db:"round"`
		Points int    `db:"points"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list round points: %w", err)
	}
	out := make([]ranking.Contribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, ranking.Contribution{UserID: row.UserID, Round: row.Round, Points: row.Points})
	}
	return out, nil
}

// ApplyMatchResult locks the match and its predictions, stores the score and
// rewrites points before committing.
func (r *PredictionRepository) ApplyMatchResult(ctx context.Context, matchID int64, final scoring.Scoreline, rescore prediction.RescoreFunc) (int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx apply match result: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("id").From("matches").Where(qb.Eq("id", matchID)).ForUpdate().ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build lock match query: %w", err)
	}
	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("lock match: %w", err)
	}

	scoreQuery, scoreArgs, err := qb.Update("matches").
		Set("score_home", final.Home).
		Set("score_away", final.Away).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build store match score query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, scoreQuery, scoreArgs...); err != nil {
		return 0, false, fmt.Errorf("store match score: %w", err)
	}

	predsQuery, predsArgs, err := qb.Select("*").From("predictions").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build lock predictions query: %w", err)
	}
	var rows []predictionTableModel
	if err := tx.SelectContext(ctx, &rows, predsQuery, predsArgs...); err != nil {
		return 0, false, fmt.Errorf("lock predictions: %w", err)
	}

	preds := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		preds = append(preds, predictionFromRow(row))
	}
	for _, a := range rescore(preds) {
		query, args, err := qb.Update("predictions").
			Set("points", a.Points).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", a.PredictionID)).
			ToSQL()
		if err != nil {
			return 0, false, fmt.Errorf("build write points query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, false, fmt.Errorf("write prediction points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit apply match result tx: %w", err)
	}
	return len(preds), true, nil
}

func (r *PredictionRepository) getOne(ctx context.Context, op string, conds ...qb.Condition) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").Where(conds...).ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build %s query: %w", op, err)
	}
	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return predictionFromRow(row), true, nil
}
