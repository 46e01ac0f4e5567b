package httpapi

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.userService.Register(ctx, usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register user failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, userDTO{
		UserID:    created.ID,
		Name:      created.Name,
		Email:     created.Email,
		CreatedAt: created.CreatedAt,
	})
}

// Login accepts a JSON body or an OAuth2 password form (username/password),
// which is what the original web client posts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	req, err := h.decodeLogin(w, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := loginDTO{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		UserID:      result.UserID,
	}
	if !result.ExpiresAt.IsZero() {
		expiresAt := result.ExpiresAt.UTC()
		out.ExpiresAt = &expiresAt
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) decodeLogin(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		if err := r.ParseMultipartForm(maxRequestBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return loginRequest{}, fmt.Errorf("%w: invalid form body", usecase.ErrInvalidInput)
		}
		email := r.PostFormValue("username")
		if strings.TrimSpace(email) == "" {
			email = r.PostFormValue("email")
		}
		return loginRequest{Email: email, Password: r.PostFormValue("password")}, nil
	default:
		var req loginRequest
		body, err := readBody(w, r)
		if err != nil {
			return loginRequest{}, err
		}
		if err := unmarshalBody(body, &req); err != nil {
			return loginRequest{}, err
		}
		return req, nil
	}
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.userService.Profile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}

func (h *Handler) UpdateMyName(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyName")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateNameRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.userService.UpdateName(ctx, principal.UserID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "update name failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userDTO{UserID: updated.ID, Name: updated.Name, Email: updated.Email, CreatedAt: updated.CreatedAt})
}

func (h *Handler) UpdateMyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyEmail")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateEmailRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.userService.UpdateEmail(ctx, principal.UserID, req.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "update email failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userDTO{UserID: updated.ID, Name: updated.Name, Email: updated.Email, CreatedAt: updated.CreatedAt})
}

// GenerateResetLink accepts the email as JSON or as an ?email= query
// parameter, as the original admin tooling sent it.
func (h *Handler) GenerateResetLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateResetLink")
	defer span.End()

	req := resetLinkRequest{Email: strings.TrimSpace(r.URL.Query().Get("email"))}
	if req.Email == "" {
		if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	} else if err := h.validateRequest(ctx, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.passwordResetService.GenerateLink(ctx, req.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "generate reset link failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, resetLinkDTO{ResetLink: link})
}

func (h *Handler) GenerateMyResetLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateMyResetLink")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.passwordResetService.GenerateLinkForUser(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "generate own reset link failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, resetLinkDTO{ResetLink: link})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPassword")
	defer span.End()

	var req resetPasswordRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.passwordResetService.Reset(ctx, r.PathValue("token"), req.NewPassword); err != nil {
		h.logger.WarnContext(ctx, "reset password failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"reset": true})
}
