package postgres

import (
	"database/sql"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/notification"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/passwordreset"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/pushsubscription"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
)

type userTableModel struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type userInsertModel struct {
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
}

type matchTableModel struct {
	ID           int64          `db:"id"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	HomeTeamLogo string         `db:"home_team_logo"`
	AwayTeamLogo string         `db:"away_team_logo"`
	KickoffAt    time.Time      `db:"kickoff_at"`
	Status       string         `db:"status"`
	ScoreHome    sql.NullInt64  `db:"score_home"`
	ScoreAway    sql.NullInt64  `db:"score_away"`
	LeagueID     int64          `db:"league_id"`
	LeagueName   string         `db:"league_name"`
	LeagueLogo   string         `db:"league_logo"`
	Season       int            `db:"season"`
	Round        sql.NullString `db:"round"`
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		HomeTeamLogo: row.HomeTeamLogo,
		AwayTeamLogo: row.AwayTeamLogo,
		KickoffAt:    row.KickoffAt.UTC(),
		Status:       row.Status,
		ScoreHome:    intFromNull(row.ScoreHome),
		ScoreAway:    intFromNull(row.ScoreAway),
		League: match.League{
			ID:     row.LeagueID,
			Name:   row.LeagueName,
			Logo:   row.LeagueLogo,
			Season: row.Season,
		},
		Round: row.Round.String,
	}
}

func matchToRow(m match.Match) matchTableModel {
	return matchTableModel{
		ID:           m.ID,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		HomeTeamLogo: m.HomeTeamLogo,
		AwayTeamLogo: m.AwayTeamLogo,
		KickoffAt:    m.KickoffAt.UTC(),
		Status:       match.NormalizeStatus(m.Status),
		ScoreHome:    nullInt(m.ScoreHome),
		ScoreAway:    nullInt(m.ScoreAway),
		LeagueID:     m.League.ID,
		LeagueName:   m.League.Name,
		LeagueLogo:   m.League.Logo,
		Season:       m.League.Season,
		Round:        nullString(m.Round),
	}
}

type predictionTableModel struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	MatchID   int64     `db:"match_id"`
	HomeGoals int       `db:"home_goals"`
	AwayGoals int       `db:"away_goals"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type predictionInsertModel struct {
	UserID    int64     `db:"user_id"`
	MatchID   int64     `db:"match_id"`
	HomeGoals int       `db:"home_goals"`
	AwayGoals int       `db:"away_goals"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:        row.ID,
		UserID:    row.UserID,
		MatchID:   row.MatchID,
		Home:      row.HomeGoals,
		Away:      row.AwayGoals,
		Points:    row.Points,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// predictionWithMatchRow flattens a prediction joined with its match. Match
// columns are prefixed with m_.
type predictionWithMatchRow struct {
	predictionTableModel
	MatchHomeTeam     string         `db:"m_home_team"`
	MatchAwayTeam     string         `db:"m_away_team"`
	MatchHomeTeamLogo string         `db:"m_home_team_logo"`
	MatchAwayTeamLogo string         `db:"m_away_team_logo"`
	MatchKickoffAt    time.Time      `db:"m_kickoff_at"`
	MatchStatus       string         `db:"m_status"`
	MatchScoreHome    sql.NullInt64  `db:"m_score_home"`
	MatchScoreAway    sql.NullInt64  `db:"m_score_away"`
	MatchLeagueID     int64          `db:"m_league_id"`
	MatchLeagueName   string         `db:"m_league_name"`
	MatchLeagueLogo   string         `db:"m_league_logo"`
	MatchSeason       int            `db:"m_season"`
	MatchRound        sql.NullString `db:"m_round"`
}

func (row predictionWithMatchRow) toDomain() prediction.WithMatch {
	return prediction.WithMatch{
		Prediction: predictionFromRow(row.predictionTableModel),
		Match: matchFromRow(matchTableModel{
			ID:           row.MatchID,
			HomeTeam:     row.MatchHomeTeam,
			AwayTeam:     row.MatchAwayTeam,
			HomeTeamLogo: row.MatchHomeTeamLogo,
			AwayTeamLogo: row.MatchAwayTeamLogo,
			KickoffAt:    row.MatchKickoffAt,
			Status:       row.MatchStatus,
			ScoreHome:    row.MatchScoreHome,
			ScoreAway:    row.MatchScoreAway,
			LeagueID:     row.MatchLeagueID,
			LeagueName:   row.MatchLeagueName,
			LeagueLogo:   row.MatchLeagueLogo,
			Season:       row.MatchSeason,
			Round:        row.MatchRound,
		}),
	}
}

type groupTableModel struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	InviteCode string    `db:"invite_code"`
	CreatorID  int64     `db:"creator_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type groupInsertModel struct {
	Name       string    `db:"name"`
	InviteCode string    `db:"invite_code"`
	CreatorID  int64     `db:"creator_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func groupFromRow(row groupTableModel, leagues []match.League) group.Group {
	return group.Group{
		ID:         row.ID,
		Name:       row.Name,
		InviteCode: row.InviteCode,
		CreatorID:  row.CreatorID,
		CreatedAt:  row.CreatedAt,
		Leagues:    leagues,
	}
}

type competitionTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	IsPublic  bool      `db:"is_public"`
	CreatorID int64     `db:"creator_id"`
	CreatedAt time.Time `db:"created_at"`
}

type competitionInsertModel struct {
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	IsPublic  bool      `db:"is_public"`
	CreatorID int64     `db:"creator_id"`
	CreatedAt time.Time `db:"created_at"`
}

func competitionFromRow(row competitionTableModel, leagues []match.League) competition.Competition {
	return competition.Competition{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		IsPublic:  row.IsPublic,
		CreatorID: row.CreatorID,
		CreatedAt: row.CreatedAt,
		Leagues:   leagues,
	}
}

// cohortLeagueRow is shared by group_leagues and competition_leagues; OwnerID
// is the group or competition id.
type cohortLeagueRow struct {
	OwnerID    int64  `db:"owner_id"`
	LeagueID   int64  `db:"league_id"`
	LeagueName string `db:"league_name"`
	LeagueLogo string `db:"league_logo"`
	Season     int    `db:"season"`
}

func (row cohortLeagueRow) toDomain() match.League {
	return match.League{ID: row.LeagueID, Name: row.LeagueName, Logo: row.LeagueLogo, Season: row.Season}
}

type memberRow struct {
	UserID   int64     `db:"user_id"`
	Name     string    `db:"name"`
	Email    string    `db:"email"`
	JoinedAt time.Time `db:"joined_at"`
}

type resetTokenTableModel struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

type resetTokenInsertModel struct {
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

func resetTokenFromRow(row resetTokenTableModel) passwordreset.Token {
	return passwordreset.Token{
		ID:        row.ID,
		UserID:    row.UserID,
		Token:     row.Token,
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
		CreatedAt: row.CreatedAt,
	}
}

type pushSubscriptionTableModel struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	P256dh    string    `db:"p256dh"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type pushSubscriptionInsertModel struct {
	UserID    int64     `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	P256dh    string    `db:"p256dh"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func pushSubscriptionFromRow(row pushSubscriptionTableModel) pushsubscription.Subscription {
	return pushsubscription.Subscription{
		ID:        row.ID,
		UserID:    row.UserID,
		Endpoint:  row.Endpoint,
		P256dh:    row.P256dh,
		Auth:      row.Auth,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type notificationMarkerInsertModel struct {
	UserID  int64               `db:"user_id"`
	MatchID int64               `db:"match_id"`
	Window  notification.Window `db:"\"window\""`
	SentAt  time.Time           `db:"sent_at"`
}
