package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "quiniela"

	internalErrorMessage = "internal server error"
	retryAfterSeconds    = 30
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorKind struct {
	sentinel   error
	httpStatus int
	reason     string
	status     string
}

// errorKinds is checked in order; the first sentinel in the chain wins.
var errorKinds = []errorKind{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrForbidden, http.StatusForbidden, "forbidden", "PERMISSION_DENIED"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrConflict, http.StatusConflict, "conflict", "ALREADY_EXISTS"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
	{errRateLimited, http.StatusTooManyRequests, "rateLimited", "RESOURCE_EXHAUSTED"},
}

var internalKind = errorKind{httpStatus: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}

// writeJSON encodes into a pooled buffer first so an encoding failure turns
// into a 500 instead of a truncated body.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_, _ = buf.WriteString(`{"apiVersion":"` + googleAPIVersion + `","error":{"code":500,"message":"` + internalErrorMessage + `","status":"INTERNAL"}}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError maps err onto the envelope. The top-level message drops the
// sentinel prefix; internal errors never leak their text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	kind := classifyError(err)
	if kind.sentinel == nil {
		writeInternalError(ctx, w)
		return
	}
	if kind.httpStatus == http.StatusServiceUnavailable || kind.httpStatus == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	writeJSON(ctx, w, kind.httpStatus, errorEnvelope(kind, clientMessage(err, kind.sentinel), err.Error()))
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope(internalKind, internalErrorMessage, internalErrorMessage))
}

func errorEnvelope(kind errorKind, message, detail string) googleResponseEnvelope {
	return googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    kind.httpStatus,
			Message: message,
			Status:  kind.status,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  kind.reason,
				Message: detail,
			}},
		},
	}
}

func classifyError(err error) errorKind {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.sentinel) {
			return kind
		}
	}
	return internalKind
}

// clientMessage turns "invalid input: email is required" into
// "email is required". Errors wrapped further out keep their full text.
func clientMessage(err error, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && rest != "" {
		return rest
	}
	return msg
}
