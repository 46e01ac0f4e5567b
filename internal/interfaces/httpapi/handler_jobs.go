package httpapi

import (
	"fmt"
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func (h *Handler) SubscribePush(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubscribePush")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req subscribeRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	p256dh, auth := req.keys()
	saved, err := h.pushService.Subscribe(ctx, usecase.SubscribeInput{
		UserID:   principal.UserID,
		Endpoint: req.Endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save push subscription failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, subscriptionDTO{ID: saved.ID, Endpoint: saved.Endpoint})
}

func (h *Handler) ApplyMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyMatchResult")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req matchResultRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rescored, err := h.matchResultService.ApplyResult(ctx, matchID, *req.ScoreHome, *req.ScoreAway)
	if err != nil {
		h.logger.WarnContext(ctx, "apply match result failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultDTO{MatchID: matchID, Rescored: rescored})
}

func (h *Handler) RunFixtureSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFixtureSyncJob")
	defer span.End()

	if h.fixtureSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: fixture sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.fixtureSyncService.Sync(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "fixture sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncResultToDTO(result))
}

func (h *Handler) RunNotificationJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunNotificationJob")
	defer span.End()

	if h.notificationService == nil {
		writeError(ctx, w, fmt.Errorf("%w: notifications are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.notificationService.NotifyUpcoming(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "notification job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, notifyResultToDTO(result))
}
