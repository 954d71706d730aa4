package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

// ParseQueryInt reads an integer query parameter, clamping it into [min, max].
// Missing or unparsable values fall back to defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ParseQueryIntPtr reads an optional integer query parameter, returning nil
// when absent and a validation error when unparsable.
func ParseQueryIntPtr(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("query parameter %q must be an integer", key))
	}
	return &value, nil
}

// ParsePagination reads the standard page/limit query parameters.
func ParsePagination(r *http.Request) pagination.Params {
	return pagination.Params{
		Page:  ParseQueryInt(r, "page", 1, 1, 1<<30),
		Limit: ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit),
	}
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
