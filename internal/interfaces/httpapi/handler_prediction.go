package httpapi

import (
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePrediction")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req createPredictionRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.predictionService.Create(ctx, usecase.SavePredictionInput{
		UserID:  principal.UserID,
		MatchID: req.MatchID,
		Home:    *req.PredHome,
		Away:    *req.PredAway,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create prediction failed", "user_id", principal.UserID, "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(created))
}

func (h *Handler) UpdatePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePrediction")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	predictionID, err := pathID(r, "predictionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updatePredictionRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.predictionService.Update(ctx, usecase.SavePredictionInput{
		UserID:       principal.UserID,
		PredictionID: predictionID,
		Home:         *req.PredHome,
		Away:         *req.PredAway,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update prediction failed", "user_id", principal.UserID, "prediction_id", predictionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(updated))
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.predictionService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list predictions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, myPredictionsToDTO(items))
}

func (h *Handler) ListAvailableMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailableMatches")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.predictionService.AvailableMatches(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list available matches failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) ListAvailableCompetitionMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailableCompetitionMatches")
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

	items, err := h.predictionService.AvailableMatchesForCompetition(ctx, principal.UserID, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list competition matches failed", "user_id", principal.UserID, "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) GlobalRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GlobalRanking")
	defer span.End()

	table, err := h.rankingService.Global(ctx, roundParam(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "global ranking failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(table))
}
