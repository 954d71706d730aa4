// Package controllers holds the HTTP handlers for the storefront and admin
// APIs. Handlers are closures over their service dependencies so the router
// stays declarative.
package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/api/middleware"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

func requireUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}
