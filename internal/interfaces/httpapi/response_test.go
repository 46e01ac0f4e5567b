package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/rogeliolopezcamara/quiniela-app/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	if got, _ := errorObj["message"].(string); got != "bad payload" {
		t.Fatalf("unexpected client message: got=%q want=%q", got, "bad payload")
	}
	items, _ := errorObj["errors"].([]any)
	if len(items) != 1 {
		t.Fatalf("unexpected error items: %v", errorObj["errors"])
	}
	item, _ := items[0].(map[string]any)
	if item["domain"] != errorDomain || item["reason"] != "invalidInput" || item["message"] != "invalid input: bad payload" {
		t.Fatalf("unexpected error item: %v", item)
	}
}

func TestWriteError_RetryAfterOnUnavailable(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("unexpected Retry-After: got=%q want=%q", got, "30")
	}
}

func TestClientMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("%w: email already registered", usecase.ErrConflict), want: "email already registered"},
		{err: fmt.Errorf("join competition: %w", usecase.ErrNotFound), want: "join competition: resource not found"},
		{err: usecase.ErrForbidden, want: "forbidden"},
	}
	for _, tt := range tests {
		if got := clientMessage(tt.err, classifyError(tt.err).sentinel); got != tt.want {
			t.Fatalf("unexpected message: got=%q want=%q", got, tt.want)
		}
	}
}

func TestWriteJSON_UnencodablePayloadBecomesInternalError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), internalErrorMessage) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: usecase.ErrInvalidInput, want: http.StatusBadRequest},
		{err: usecase.ErrUnauthorized, want: http.StatusUnauthorized},
		{err: usecase.ErrForbidden, want: http.StatusForbidden},
		{err: usecase.ErrNotFound, want: http.StatusNotFound},
		{err: usecase.ErrConflict, want: http.StatusConflict},
		{err: usecase.ErrDependencyUnavailable, want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(context.Background(), rec, fmt.Errorf("wrapped: %w", tt.err))
		if rec.Code != tt.want {
			t.Fatalf("unexpected status for %v: got=%d want=%d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestWriteError_InternalMessageNotLeaked(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed"))

	if strings.Contains(rec.Body.String(), "password authentication") {
		t.Fatalf("internal error leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
