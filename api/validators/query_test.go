package validators

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/?limit=25&junk=abc&low=-5", nil)

	if got := ParseQueryInt(req, "limit", 10, 1, 100); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := ParseQueryInt(req, "missing", 10, 1, 100); got != 10 {
		t.Fatalf("expected default 10, got %d", got)
	}
	if got := ParseQueryInt(req, "junk", 10, 1, 100); got != 10 {
		t.Fatalf("expected default on junk, got %d", got)
	}
	if got := ParseQueryInt(req, "low", 10, 1, 100); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
}

func TestParsePagination(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/?page=3&limit=500", nil)
	params := ParsePagination(req)
	if params.Page != 3 {
		t.Fatalf("expected page 3, got %d", params.Page)
	}
	if params.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", params.Limit)
	}
}

func TestParseUUIDParam(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productID", id.String())
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	got, err := ParseUUIDParam(req, "productID")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}

	badCtx := chi.NewRouteContext()
	badCtx.URLParams.Add("productID", "not-a-uuid")
	bad := httptest.NewRequest("GET", "/", nil)
	bad = bad.WithContext(context.WithValue(bad.Context(), chi.RouteCtxKey, badCtx))

	_, err = ParseUUIDParam(bad, "productID")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
