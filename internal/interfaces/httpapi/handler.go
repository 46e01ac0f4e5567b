package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/rogeliolopezcamara/quiniela-app/internal/domain/user"
	"github.com/rogeliolopezcamara/quiniela-app/internal/platform/logging"
	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	userService          *usecase.UserService
	passwordResetService *usecase.PasswordResetService
	predictionService    *usecase.PredictionService
	rankingService       *usecase.RankingService
	groupService         *usecase.GroupService
	competitionService   *usecase.CompetitionService
	pushService          *usecase.PushService
	matchResultService   *usecase.MatchResultService
	fixtureSyncService   *usecase.FixtureSyncService
	notificationService  *usecase.NotificationService
	logger               *logging.Logger
	validator            *validator.Validate
}

// NewHandler wires the HTTP surface. fixtureSyncService and
// notificationService may be nil; their job routes then answer 503.
func NewHandler(
	userService *usecase.UserService,
	passwordResetService *usecase.PasswordResetService,
	predictionService *usecase.PredictionService,
	rankingService *usecase.RankingService,
	groupService *usecase.GroupService,
	competitionService *usecase.CompetitionService,
	pushService *usecase.PushService,
	matchResultService *usecase.MatchResultService,
	fixtureSyncService *usecase.FixtureSyncService,
	notificationService *usecase.NotificationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:          userService,
		passwordResetService: passwordResetService,
		predictionService:    predictionService,
		rankingService:       rankingService,
		groupService:         groupService,
		competitionService:   competitionService,
		pushService:          pushService,
		matchResultService:   matchResultService,
		fixtureSyncService:   fixtureSyncService,
		notificationService:  notificationService,
		logger:               logger.Named("httpapi"),
		validator:            validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func (h *Handler) decodeAndValidate(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := unmarshalBody(body, dst); err != nil {
		return err
	}
	return h.validateRequest(ctx, dst)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	return body, nil
}

func unmarshalBody(body []byte, dst any) error {
	if err := sonic.ConfigDefault.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid request body", usecase.ErrInvalidInput)
	}
	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func roundParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("round"))
}
