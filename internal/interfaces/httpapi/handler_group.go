package httpapi

import (
	"net/http"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGroup")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req createGroupRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.groupService.Create(ctx, usecase.CreateGroupInput{
		UserID:  principal.UserID,
		Name:    req.Name,
		Leagues: leaguesFromInput(req.Leagues),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, groupToDTO(created))
}

func (h *Handler) ListMyGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyGroups")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groups, err := h.groupService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list groups failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// JoinGroup answers 200 with already_member=true for repeat joins.
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinGroup")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req joinGroupRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.groupService.JoinByInviteCode(ctx, principal.UserID, req.InviteCode)
	if err != nil {
		h.logger.WarnContext(ctx, "join group failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, joinGroupDTO{Group: groupToDTO(result.Group), AlreadyMember: result.AlreadyMember})
}

func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupMembers")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	members, err := h.groupService.ListMembers(ctx, principal.UserID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list group members failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupMembersToDTO(members))
}

func (h *Handler) GroupRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GroupRanking")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.rankingService.Group(ctx, principal.UserID, groupID, roundParam(r))
	if err != nil {
		h.logger.WarnContext(ctx, "group ranking failed", "user_id", principal.UserID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(table))
}
