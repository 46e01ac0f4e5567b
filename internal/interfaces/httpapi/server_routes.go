package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, limiter *ipLimiter) {
	mux.Handle("POST /v1/users", RateLimitByIP(limiter, http.HandlerFunc(handler.Register)))
	mux.Handle("POST /v1/auth/login", RateLimitByIP(limiter, http.HandlerFunc(handler.Login)))
	mux.Handle("POST /v1/password-reset/{token}", RateLimitByIP(limiter, http.HandlerFunc(handler.ResetPassword)))
	mux.HandleFunc("GET /v1/ranking", handler.GlobalRanking)
	mux.HandleFunc("GET /v1/competitions/leagues", handler.ListCompetitionLeagues)
	mux.HandleFunc("GET /v1/competitions/public", handler.ListPublicCompetitions)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedAccountRoutes(mux, handler, verifier)
	registerAuthorizedPredictionRoutes(mux, handler, verifier)
	registerAuthorizedGroupRoutes(mux, handler, verifier)
	registerAuthorizedCompetitionRoutes(mux, handler, verifier)
	mux.Handle("POST /v1/push/subscriptions", RequireAuth(verifier, http.HandlerFunc(handler.SubscribePush)))
}

func registerSharedSecretRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.Handle("POST /v1/password-reset/links", RequireResetToken(cfg.ResetSecret, http.HandlerFunc(handler.GenerateResetLink)))

	mux.Handle("PUT /v1/internal/matches/{matchID}/result", RequireInternalJobToken(cfg.InternalJobToken, http.HandlerFunc(handler.ApplyMatchResult)))
	mux.Handle("POST /v1/internal/jobs/update-matches", RequireInternalJobToken(cfg.InternalJobToken, http.HandlerFunc(handler.RunFixtureSyncJob)))
	mux.Handle("POST /v1/internal/jobs/send-notifications", RequireInternalJobToken(cfg.InternalJobToken, http.HandlerFunc(handler.RunNotificationJob)))
}

func registerAuthorizedAccountRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me", RequireAuth(verifier, http.HandlerFunc(handler.Me)))
	mux.Handle("PUT /v1/me/name", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMyName)))
	mux.Handle("PUT /v1/me/email", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMyEmail)))
	mux.Handle("POST /v1/me/password-reset-link", RequireAuth(verifier, http.HandlerFunc(handler.GenerateMyResetLink)))
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/predictions", RequireAuth(verifier, http.HandlerFunc(handler.CreatePrediction)))
	mux.Handle("PUT /v1/predictions/{predictionID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePrediction)))
	mux.Handle("GET /v1/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
	mux.Handle("GET /v1/matches/available", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailableMatches)))
	mux.Handle("GET /v1/competitions/{competitionID}/matches/available", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailableCompetitionMatches)))
}

func registerAuthorizedGroupRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/groups", RequireAuth(verifier, http.HandlerFunc(handler.CreateGroup)))
	mux.Handle("GET /v1/groups", RequireAuth(verifier, http.HandlerFunc(handler.ListMyGroups)))
	mux.Handle("POST /v1/groups/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinGroup)))
	mux.Handle("GET /v1/groups/{groupID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListGroupMembers)))
	mux.Handle("GET /v1/groups/{groupID}/ranking", RequireAuth(verifier, http.HandlerFunc(handler.GroupRanking)))
}

func registerAuthorizedCompetitionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/competitions", RequireAuth(verifier, http.HandlerFunc(handler.CreateCompetition)))
	mux.Handle("GET /v1/competitions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyCompetitions)))
	mux.Handle("GET /v1/competitions/me/stats", RequireAuth(verifier, http.HandlerFunc(handler.ListMyCompetitionStats)))
	mux.Handle("POST /v1/competitions/join/{code}", RequireAuth(verifier, http.HandlerFunc(handler.JoinCompetition)))
	mux.Handle("DELETE /v1/competitions/{competitionID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteCompetition)))
	mux.Handle("GET /v1/competitions/{competitionID}/ranking", RequireAuth(verifier, http.HandlerFunc(handler.CompetitionRanking)))
}
