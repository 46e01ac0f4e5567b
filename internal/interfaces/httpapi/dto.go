package httpapi

import (
	"sort"
	"time"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/competition"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/group"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/match"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/prediction"
	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/ranking"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type resetLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

type createPredictionRequest struct {
	MatchID  int64 `json:"match_id" validate:"required,gt=0"`
	PredHome *int  `json:"pred_home" validate:"required,min=0,max=99"`
	PredAway *int  `json:"pred_away" validate:"required,min=0,max=99"`
}

type updatePredictionRequest struct {
	PredHome *int `json:"pred_home" validate:"required,min=0,max=99"`
	PredAway *int `json:"pred_away" validate:"required,min=0,max=99"`
}

type matchResultRequest struct {
	ScoreHome *int `json:"score_home" validate:"required,min=0"`
	ScoreAway *int `json:"score_away" validate:"required,min=0"`
}

type leagueInput struct {
	LeagueID     int64  `json:"league_id" validate:"required,gt=0"`
	LeagueName   string `json:"league_name" validate:"max=200"`
	LeagueLogo   string `json:"league_logo" validate:"max=500"`
	LeagueSeason int    `json:"league_season" validate:"required,gt=0"`
}

type createGroupRequest struct {
	Name    string        `json:"name" validate:"required,max=100"`
	Leagues []leagueInput `json:"leagues" validate:"omitempty,dive"`
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required,max=64"`
}

type createCompetitionRequest struct {
	Name     string        `json:"name" validate:"required,max=100"`
	IsPublic bool          `json:"is_public"`
	Leagues  []leagueInput `json:"leagues" validate:"required,min=1,dive"`
}

type pushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// subscribeRequest accepts both the flat field names and the nested keys
// object produced by PushSubscription.toJSON() in browsers.
type subscribeRequest struct {
	Endpoint  string    `json:"endpoint" validate:"required,url"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	Keys      *pushKeys `json:"keys"`
}

func (r subscribeRequest) keys() (string, string) {
	p256dh, auth := r.P256dhKey, r.AuthKey
	if r.Keys != nil {
		if p256dh == "" {
			p256dh = r.Keys.P256dh
		}
		if auth == "" {
			auth = r.Keys.Auth
		}
	}
	return p256dh, auth
}

type userDTO struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type profileDTO struct {
	userDTO
	TotalPoints int `json:"total_points"`
}

type loginDTO struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	UserID      int64      `json:"user_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type resetLinkDTO struct {
	ResetLink string `json:"reset_link"`
}

type matchDTO struct {
	MatchID      int64     `json:"match_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	HomeTeamLogo string    `json:"home_team_logo"`
	AwayTeamLogo string    `json:"away_team_logo"`
	MatchDate    time.Time `json:"match_date"`
	Status       string    `json:"status"`
	ScoreHome    *int      `json:"score_home"`
	ScoreAway    *int      `json:"score_away"`
	LeagueID     int64     `json:"league_id"`
	LeagueName   string    `json:"league_name"`
	LeagueLogo   string    `json:"league_logo"`
	LeagueSeason int       `json:"league_season"`
	LeagueRound  string    `json:"league_round"`
}

type predictionDTO struct {
	ID       int64 `json:"id"`
	MatchID  int64 `json:"match_id"`
	PredHome int   `json:"pred_home"`
	PredAway int   `json:"pred_away"`
	Points   int   `json:"points"`
}

type myPredictionDTO struct {
	PredictionID int64 `json:"prediction_id"`
	PredHome     int   `json:"pred_home"`
	PredAway     int   `json:"pred_away"`
	Points       int   `json:"points"`
	matchDTO
}

type rankingEntryDTO struct {
	Position    int            `json:"position"`
	UserID      int64          `json:"user_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	TotalPoints int            `json:"total_points"`
	Rounds      map[string]int `json:"rounds"`
}

type rankingDTO struct {
	Rounds  []string          `json:"rounds"`
	Ranking []rankingEntryDTO `json:"ranking"`
}

type leagueDTO struct {
	LeagueID     int64  `json:"league_id"`
	LeagueName   string `json:"league_name"`
	LeagueLogo   string `json:"league_logo"`
	LeagueSeason int    `json:"league_season"`
}

type groupDTO struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	InviteCode string      `json:"invite_code"`
	CreatorID  int64       `json:"creator_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Leagues    []leagueDTO `json:"leagues"`
}

type joinGroupDTO struct {
	Group         groupDTO `json:"group"`
	AlreadyMember bool     `json:"already_member"`
}

type memberDTO struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type competitionDTO struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code"`
	IsPublic  bool        `json:"is_public"`
	CreatorID int64       `json:"creator_id"`
	CreatedAt time.Time   `json:"created_at"`
	Leagues   []leagueDTO `json:"leagues"`
}

type competitionStatsLeagueDTO struct {
	LeagueName string `json:"league_name"`
	LeagueLogo string `json:"league_logo"`
}

type competitionStatsDTO struct {
	ID          int64                       `json:"id"`
	Name        string                      `json:"name"`
	IsPublic    bool                        `json:"is_public"`
	InviteCode  string                      `json:"invite_code"`
	MemberCount int                         `json:"member_count"`
	MyRanking   *int                        `json:"my_ranking"`
	MyPoints    int                         `json:"my_points"`
	Leagues     []competitionStatsLeagueDTO `json:"leagues"`
	IsCreator   bool                        `json:"is_creator"`
}

type subscriptionDTO struct {
	ID       int64  `json:"id"`
	Endpoint string `json:"endpoint"`
}

type matchResultDTO struct {
	MatchID  int64 `json:"match_id"`
	Rescored int   `json:"rescored"`
}

type leagueFailureDTO struct {
	LeagueID int64  `json:"league_id"`
	Season   int    `json:"season"`
	Error    string `json:"error"`
}

type syncResultDTO struct {
	Leagues  int                `json:"leagues"`
	Fetched  int                `json:"fetched"`
	Upserted int                `json:"upserted"`
	Rescored int                `json:"rescored"`
	Failures []leagueFailureDTO `json:"failures"`
}

type windowCountsDTO struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type notifyResultDTO struct {
	Matches int                        `json:"matches"`
	Windows map[string]windowCountsDTO `json:"windows"`
	Removed int                        `json:"removed"`
}

func (in leagueInput) toDomain() match.League {
	return match.League{ID: in.LeagueID, Name: in.LeagueName, Logo: in.LeagueLogo, Season: in.LeagueSeason}
}

func leaguesFromInput(items []leagueInput) []match.League {
	out := make([]match.League, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out
}

func leagueToDTO(l match.League) leagueDTO {
	return leagueDTO{LeagueID: l.ID, LeagueName: l.Name, LeagueLogo: l.Logo, LeagueSeason: l.Season}
}

func leaguesToDTO(items []match.League) []leagueDTO {
	out := make([]leagueDTO, 0, len(items))
	for _, l := range items {
		out = append(out, leagueToDTO(l))
	}
	return out
}

func profileToDTO(p usecase.Profile) profileDTO {
	return profileDTO{
		userDTO: userDTO{
			UserID:    p.User.ID,
			Name:      p.User.Name,
			Email:     p.User.Email,
			CreatedAt: p.User.CreatedAt,
		},
		TotalPoints: p.TotalPoints,
	}
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		MatchID:      m.ID,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		HomeTeamLogo: m.HomeTeamLogo,
		AwayTeamLogo: m.AwayTeamLogo,
		MatchDate:    m.KickoffAt.UTC(),
		Status:       m.Status,
		ScoreHome:    m.ScoreHome,
		ScoreAway:    m.ScoreAway,
		LeagueID:     m.League.ID,
		LeagueName:   m.League.Name,
		LeagueLogo:   m.League.Logo,
		LeagueSeason: m.League.Season,
		LeagueRound:  m.Round,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	return predictionDTO{ID: p.ID, MatchID: p.MatchID, PredHome: p.Home, PredAway: p.Away, Points: p.Points}
}

func myPredictionsToDTO(items []prediction.WithMatch) []myPredictionDTO {
	out := make([]myPredictionDTO, 0, len(items))
	for _, p := range items {
		out = append(out, myPredictionDTO{
			PredictionID: p.ID,
			PredHome:     p.Home,
			PredAway:     p.Away,
			Points:       p.Points,
			matchDTO:     matchToDTO(p.Match),
		})
	}
	return out
}

func rankingToDTO(t ranking.Table) rankingDTO {
	rounds := t.Rounds
	if rounds == nil {
		rounds = []string{}
	}
	entries := make([]rankingEntryDTO, 0, len(t.Entries))
	for _, e := range t.Entries {
		perRound := make(map[string]int, len(e.Rounds))
		for k, v := range e.Rounds {
			perRound[k] = v
		}
		entries = append(entries, rankingEntryDTO{
			Position:    e.Position,
			UserID:      e.UserID,
			Name:        e.Name,
			Email:       e.Email,
			TotalPoints: e.Total,
			Rounds:      perRound,
		})
	}
	return rankingDTO{Rounds: rounds, Ranking: entries}
}

func groupToDTO(g group.Group) groupDTO {
	return groupDTO{
		ID:         g.ID,
		Name:       g.Name,
		InviteCode: g.InviteCode,
		CreatorID:  g.CreatorID,
		CreatedAt:  g.CreatedAt,
		Leagues:    leaguesToDTO(g.Leagues),
	}
}

func groupMembersToDTO(items []group.Member) []memberDTO {
	out := make([]memberDTO, 0, len(items))
	for _, m := range items {
		out = append(out, memberDTO{UserID: m.UserID, Name: m.Name, Email: m.Email, JoinedAt: m.JoinedAt})
	}
	return out
}

func competitionToDTO(c competition.Competition) competitionDTO {
	return competitionDTO{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		IsPublic:  c.IsPublic,
		CreatorID: c.CreatorID,
		CreatedAt: c.CreatedAt,
		Leagues:   leaguesToDTO(c.Leagues),
	}
}

func competitionsToDTO(items []competition.Competition) []competitionDTO {
	out := make([]competitionDTO, 0, len(items))
	for _, c := range items {
		out = append(out, competitionToDTO(c))
	}
	return out
}

func competitionStatsToDTO(items []usecase.CompetitionStats) []competitionStatsDTO {
	out := make([]competitionStatsDTO, 0, len(items))
	for _, s := range items {
		row := competitionStatsDTO{
			ID:          s.Competition.ID,
			Name:        s.Competition.Name,
			IsPublic:    s.Competition.IsPublic,
			InviteCode:  s.Competition.Code,
			MemberCount: s.MemberCount,
			MyPoints:    s.MyPoints,
			IsCreator:   s.IsCreator,
			Leagues:     make([]competitionStatsLeagueDTO, 0, len(s.Competition.Leagues)),
		}
		if s.MyRanking > 0 {
			position := s.MyRanking
			row.MyRanking = &position
		}
		for _, l := range s.Competition.Leagues {
			row.Leagues = append(row.Leagues, competitionStatsLeagueDTO{LeagueName: l.Name, LeagueLogo: l.Logo})
		}
		out = append(out, row)
	}
	return out
}

func syncResultToDTO(r usecase.SyncResult) syncResultDTO {
	out := syncResultDTO{
		Leagues:  r.Leagues,
		Fetched:  r.Fetched,
		Upserted: r.Upserted,
		Rescored: r.Rescored,
		Failures: make([]leagueFailureDTO, 0, len(r.Failures)),
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, leagueFailureDTO{LeagueID: f.LeagueID, Season: f.Season, Error: f.Error})
	}
	sort.Slice(out.Failures, func(i, j int) bool {
		if out.Failures[i].LeagueID != out.Failures[j].LeagueID {
			return out.Failures[i].LeagueID < out.Failures[j].LeagueID
		}
		return out.Failures[i].Season < out.Failures[j].Season
	})
	return out
}

func notifyResultToDTO(r usecase.NotifyResult) notifyResultDTO {
	out := notifyResultDTO{
		Matches: r.Matches,
		Windows: make(map[string]windowCountsDTO, len(r.Windows)),
		Removed: r.Removed,
	}
	for w, c := range r.Windows {
		out.Windows[string(w)] = windowCountsDTO{Sent: c.Sent, Skipped: c.Skipped, Failed: c.Failed}
	}
	return out
}
