package controllers

import (
	"net/http"
	"strings"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/checkout"
	"github.com/medkitstore/medkit-backend/internal/payments"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

type sessionListResponse struct {
	Sessions   []checkout.SessionDTO `json:"sessions"`
	Pagination pagination.Page       `json:"pagination"`
}

// SubmitPaymentProof attaches the customer's transfer receipt to a session.
func SubmitPaymentProof(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			ProofURI string `json:"proof_uri" validate:"required"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SubmitProof(r.Context(), customerID, sessionID, req.ProofURI)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout.NewSessionDTO(session))
	}
}

// GetMySession returns one of the customer's own checkout sessions.
func GetMySession(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.GetSession(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if session.CustomerID != customerID {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another customer"))
			return
		}
		responses.WriteSuccess(w, checkout.NewSessionDTO(session))
	}
}

// ListPaymentSessions serves the admin verification queue.
func ListPaymentSessions(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters checkout.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filters.Status = &status
		}

		result, err := svc.ListSessions(r.Context(), filters, validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionListResponse{
			Sessions:   checkout.NewSessionDTOs(result.Sessions),
			Pagination: result.Page,
		})
	}
}

// GetPaymentSession returns one session for admin review.
func GetPaymentSession(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.GetSession(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout.NewSessionDTO(session))
	}
}

// ApprovePayment marks a submitted proof as verified.
func ApprovePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			AdminNotes string `json:"admin_notes"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Approve(r.Context(), sessionID, req.AdminNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout.NewSessionDTO(session))
	}
}

// RejectPayment sends a submitted proof back to the customer with a reason.
func RejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			Reason     string `json:"reason" validate:"required"`
			AdminNotes string `json:"admin_notes"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Reject(r.Context(), sessionID, req.Reason, req.AdminNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout.NewSessionDTO(session))
	}
}
