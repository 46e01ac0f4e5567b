package httpapi

import (
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCompetition")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req createCompetitionRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.competitionService.Create(ctx, usecase.CreateCompetitionInput{
		UserID:   principal.UserID,
		Name:     req.Name,
		IsPublic: req.IsPublic,
		Leagues:  leaguesFromInput(req.Leagues),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create competition failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, competitionToDTO(created))
}

func (h *Handler) JoinCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinCompetition")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	joined, err := h.competitionService.JoinByCode(ctx, principal.UserID, r.PathValue("code"))
	if err != nil {
		h.logger.WarnContext(ctx, "join competition failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(joined))
}

func (h *Handler) ListMyCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyCompetitions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.competitionService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionsToDTO(items))
}

func (h *Handler) ListMyCompetitionStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyCompetitionStats")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.competitionService.ListMineWithStats(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competition stats failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionStatsToDTO(items))
}

func (h *Handler) DeleteCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteCompetition")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	competitionID, err := pathID(r, "competitionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.competitionService.Delete(ctx, principal.UserID, competitionID); err != nil {
		h.logger.WarnContext(ctx, "delete competition failed", "user_id", principal.UserID, "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) CompetitionRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompetitionRanking")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	competitionID, err := pathID(r, "competitionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.rankingService.Competition(ctx, principal.UserID, competitionID, roundParam(r))
	if err != nil {
		h.logger.WarnContext(ctx, "competition ranking failed", "user_id", principal.UserID, "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(table))
}

func (h *Handler) ListCompetitionLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitionLeagues")
	defer span.End()

	leagues, err := h.competitionService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competition leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaguesToDTO(leagues))
}

func (h *Handler) ListPublicCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPublicCompetitions")
	defer span.End()

	items, err := h.competitionService.ListPublic(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list public competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionsToDTO(items))
}
