package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["hello"] != "world" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWriteErrorPassesClientMessages(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds stock").
		WithDetails(map[string]any{"available": 2})
	WriteError(context.Background(), testLogger(), rec, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if body.Error.Message != "requested quantity exceeds stock" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if body.Error.Details["available"] != float64(2) {
		t.Fatalf("details not forwarded: %+v", body.Error.Details)
	}
}

func TestWriteErrorMasksInternals(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("pq: connection refused"), "load cart")
	WriteError(context.Background(), testLogger(), rec, wrapped)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "dependency unavailable" {
		t.Fatalf("internal message leaked: %q", body.Error.Message)
	}
}

func TestWriteErrorUntypedDefaultsToInternal(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(context.Background(), testLogger(), rec, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" || body.Error.Message != "internal server error" {
		t.Fatalf("unexpected envelope %s", rec.Body.String())
	}
}
