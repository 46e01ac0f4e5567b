package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/account/jwtauth"
	"github.com/rogeliolopezcamara/quiniela-app/internal/infrastructure/repository/memory"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/cache"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/id"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/password"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

const (
	testJobToken   = "job-token"
	testResetToken = "reset-token"
)

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	matches := memory.NewMatchRepository(store)
	preds := memory.NewPredictionRepository(store)
	groups := memory.NewGroupRepository(store)
	competitions := memory.NewCompetitionRepository(store)
	resets := memory.NewPasswordResetRepository(store)
	subs := memory.NewPushSubscriptionRepository(store)

	if _, err := matches.Upsert(context.Background(), memory.SeedMatches(time.Now())); err != nil {
		t.Fatalf("seed matches: %v", err)
	}

	logger := logging.NewNop()
	tokens, err := jwtauth.NewService(jwtauth.Config{Secret: "test-secret", Issuer: "quiniela-test", TTL: time.Hour}, cache.NewStore(time.Minute), logger)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	hasher := password.NewBcryptHasher(4)
	idGen := id.NewRandomGenerator()

	rankings := usecase.NewRankingService(users, preds, groups, competitions, cache.NewStore(time.Minute))
	handler := NewHandler(
		usecase.NewUserService(users, preds, hasher, tokens, rankings),
		usecase.NewPasswordResetService(users, resets, hasher, idGen, usecase.PasswordResetConfig{FrontendURL: "https://app.example.com", TTL: time.Hour}),
		usecase.NewPredictionService(matches, preds, competitions, rankings, nil),
		rankings,
		usecase.NewGroupService(groups, idGen, rankings),
		usecase.NewCompetitionService(competitions, rankings, idGen, rankings),
		usecase.NewPushService(subs),
		usecase.NewMatchResultService(preds, rankings, nil, logger),
		nil,
		nil,
		logger,
	)

	return NewRouter(handler, tokens, logger, RouterConfig{
		InternalJobToken: testJobToken,
		ResetSecret:      testResetToken,
		SwaggerEnabled:   true,
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response body: %v (%s)", err, rec.Body.String())
	}
	return out.Data
}

func registerAndLogin(t *testing.T, router http.Handler, name, email string) (int64, string) {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/v1/users", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected register status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected login status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	login := decodeData[loginDTO](t, rec)
	if login.AccessToken == "" || login.TokenType != "bearer" {
		t.Fatalf("unexpected login payload: %+v", login)
	}
	return login.UserID, login.AccessToken
}

func TestHandler_RegisterLoginAndProfile(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	userID, token := registerAndLogin(t, router, "Ana", "ana@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/users", "", map[string]string{
		"name": "Ana 2", "email": "ANA@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected duplicate register status: got=%d want=%d", rec.Code, http.StatusConflict)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected bad login status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected me status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	profile := decodeData[profileDTO](t, rec)
	if profile.UserID != userID || profile.Name != "Ana" || profile.TotalPoints != 0 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/me/name", token, map[string]string{"name": "Ana María"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected update name status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if got := decodeData[userDTO](t, rec).Name; got != "Ana María" {
		t.Fatalf("unexpected name: got=%q want=%q", got, "Ana María")
	}
}

func TestHandler_LoginAcceptsPasswordForm(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerAndLogin(t, router, "Beto", "beto@example.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString("username=beto%40example.com&password=secret123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected form login status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestHandler_RequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, token := range []string{"", "not-a-jwt"} {
		rec := doRequest(t, router, http.MethodGet, "/v1/me", token, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status for token %q: got=%d want=%d", token, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestHandler_PredictionLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "Caro", "caro@example.com")
	_, otherToken := registerAndLogin(t, router, "Dani", "dani@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/predictions", token, map[string]any{
		"match_id": 1004, "pred_home": 2, "pred_away": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected create status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeData[predictionDTO](t, rec)

	rec = doRequest(t, router, http.MethodPost, "/v1/predictions", token, map[string]any{
		"match_id": 1004, "pred_home": 0, "pred_away": 0,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected duplicate status: got=%d want=%d", rec.Code, http.StatusConflict)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/predictions", token, map[string]any{
		"match_id": 1003, "pred_home": 1, "pred_away": 1,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected started-match status: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/predictions", token, map[string]any{"match_id": 1005})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected missing-goals status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	path := "/v1/predictions/" + strconv.FormatInt(created.ID, 10)
	rec = doRequest(t, router, http.MethodPut, path, otherToken, map[string]any{"pred_home": 0, "pred_away": 3})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected foreign update status: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doRequest(t, router, http.MethodPut, path, token, map[string]any{"pred_home": 3, "pred_away": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected update status: got=%d want=%d", rec.Code, http.StatusOK)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/available", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected available status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	for _, m := range decodeData[[]matchDTO](t, rec) {
		if m.MatchID == 1004 {
			t.Fatalf("predicted match must not be listed as available")
		}
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/predictions/me", token, nil)
	mine := decodeData[[]myPredictionDTO](t, rec)
	if len(mine) != 1 || mine[0].MatchID != 1004 || mine[0].PredHome != 3 {
		t.Fatalf("unexpected predictions: %+v", mine)
	}
}

func TestHandler_MatchResultRescoresAndRanks(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	userID, token := registerAndLogin(t, router, "Eva", "eva@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/predictions", token, map[string]any{
		"match_id": 1005, "pred_home": 1, "pred_away": 0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected create status: got=%d want=%d", rec.Code, http.StatusCreated)
	}

	result := map[string]any{"score_home": 1, "score_away": 0}
	rec = doRequest(t, router, http.MethodPut, "/v1/internal/matches/1005/result", "", result)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status without job token: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/internal/matches/1005/result", "", result, internalJobTokenHeader, testJobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected result status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := decodeData[matchResultDTO](t, rec).Rescored; got != 1 {
		t.Fatalf("unexpected rescored: got=%d want=1", got)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/ranking", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected ranking status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	table := decodeData[rankingDTO](t, rec)
	if len(table.Ranking) != 1 {
		t.Fatalf("unexpected ranking size: got=%d want=1", len(table.Ranking))
	}
	if e := table.Ranking[0]; e.UserID != userID || e.TotalPoints != 3 || e.Position != 1 {
		t.Fatalf("unexpected ranking entry: %+v", e)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/internal/matches/999999/result", "", result, internalJobTokenHeader, testJobToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected unknown-match status: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_GroupsJoinAndMembers(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	_, owner := registerAndLogin(t, router, "Fer", "fer@example.com")
	_, guest := registerAndLogin(t, router, "Gabo", "gabo@example.com")
	_, outsider := registerAndLogin(t, router, "Hugo", "hugo@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/groups", owner, map[string]any{"name": "Oficina"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected create status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeData[groupDTO](t, rec)
	if len(created.InviteCode) != 8 {
		t.Fatalf("unexpected invite code: %q", created.InviteCode)
	}

	join := map[string]string{"invite_code": created.InviteCode}
	rec = doRequest(t, router, http.MethodPost, "/v1/groups/join", guest, join)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected join status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if decodeData[joinGroupDTO](t, rec).AlreadyMember {
		t.Fatalf("first join must not report already_member")
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/groups/join", guest, join)
	if !decodeData[joinGroupDTO](t, rec).AlreadyMember {
		t.Fatalf("repeat join must report already_member")
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/groups/join", guest, map[string]string{"invite_code": "nope0000"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected unknown-code status: got=%d want=%d", rec.Code, http.StatusNotFound)
	}

	membersPath := "/v1/groups/" + strconv.FormatInt(created.ID, 10) + "/members"
	rec = doRequest(t, router, http.MethodGet, membersPath, owner, nil)
	if got := len(decodeData[[]memberDTO](t, rec)); got != 2 {
		t.Fatalf("unexpected member count: got=%d want=2", got)
	}

	rec = doRequest(t, router, http.MethodGet, membersPath, outsider, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected outsider status: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/groups/"+strconv.FormatInt(created.ID, 10)+"/ranking", guest, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected group ranking status: got=%d want=%d", rec.Code, http.StatusOK)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/groups/abc/members", owner, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected bad id status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_CompetitionLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	_, owner := registerAndLogin(t, router, "Iris", "iris@example.com")
	_, guest := registerAndLogin(t, router, "Juan", "juan@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/competitions", owner, map[string]any{"name": "Sin ligas"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected no-league status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/competitions", owner, map[string]any{
		"name":      "Liga MX amigos",
		"is_public": true,
		"leagues":   []map[string]any{{"league_id": 262, "league_name": "Liga MX", "league_season": 2025}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected create status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeData[competitionDTO](t, rec)
	compPath := "/v1/competitions/" + strconv.FormatInt(created.ID, 10)

	rec = doRequest(t, router, http.MethodPost, "/v1/competitions/join/"+created.Code, guest, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected join status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, compPath+"/matches/available", guest, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected available status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	for _, m := range decodeData[[]matchDTO](t, rec) {
		if m.LeagueID != 262 {
			t.Fatalf("unexpected league in competition matches: %d", m.LeagueID)
		}
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/competitions/me/stats", owner, nil)
	stats := decodeData[[]competitionStatsDTO](t, rec)
	if len(stats) != 1 || stats[0].MemberCount != 2 || !stats[0].IsCreator {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/competitions/public", "", nil)
	if got := len(decodeData[[]competitionDTO](t, rec)); got != 1 {
		t.Fatalf("unexpected public count: got=%d want=1", got)
	}

	rec = doRequest(t, router, http.MethodDelete, compPath, guest, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected non-creator delete status: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doRequest(t, router, http.MethodDelete, compPath, owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected delete status: got=%d want=%d", rec.Code, http.StatusOK)
	}

	rec = doRequest(t, router, http.MethodGet, compPath+"/ranking", owner, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected ranking-after-delete status: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}

func TestHandler_PasswordResetFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	registerAndLogin(t, router, "Karla", "karla@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/password-reset/links?email=karla@example.com", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status without reset token: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/password-reset/links?email=karla@example.com", "", nil, resetTokenHeader, testResetToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected link status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	link := decodeData[resetLinkDTO](t, rec).ResetLink
	const prefix = "https://app.example.com/reset-password/"
	if len(link) <= len(prefix) || link[:len(prefix)] != prefix {
		t.Fatalf("unexpected reset link: %q", link)
	}
	token := link[len(prefix):]

	rec = doRequest(t, router, http.MethodPost, "/v1/password-reset/"+token, "", map[string]string{"new_password": "brandnew1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected reset status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/password-reset/"+token, "", map[string]string{"new_password": "again1234"})
	if rec.Code < 400 {
		t.Fatalf("reset token must be single use, got status %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "karla@example.com", "password": "brandnew1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected login after reset: got=%d want=%d", rec.Code, http.StatusOK)
	}
}

func TestHandler_JobsUnavailableWithoutServices(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, path := range []string{"/v1/internal/jobs/update-matches", "/v1/internal/jobs/send-notifications"} {
		rec := doRequest(t, router, http.MethodPost, path, "", nil, internalJobTokenHeader, testJobToken)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("unexpected status for %s: got=%d want=%d", path, rec.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestHandler_PushSubscription(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "Luis", "luis@example.com")

	rec := doRequest(t, router, http.MethodPost, "/v1/push/subscriptions", token, map[string]any{
		"endpoint": "https://push.example.com/send/abc",
		"keys":     map[string]string{"p256dh": "p256dh-key", "auth": "auth-key"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected subscribe status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/push/subscriptions", token, map[string]any{
		"endpoint": "https://push.example.com/send/abc",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected missing-keys status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_SystemRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: got=%d want=%d", rec.Code, http.StatusOK)
	}

	rec = doRequest(t, router, http.MethodGet, "/openapi.yaml", "", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("Quiniela API")) {
		t.Fatalf("unexpected openapi response: status=%d", rec.Code)
	}
}
