package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/checkout"
	"github.com/medkitstore/medkit-backend/internal/lifecycle"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

// ListResult is one admin page of the payment review queue.
type ListResult struct {
	Sessions []models.CheckoutSession
	Page     pagination.Page
}

// Service handles payment-proof submission and admin verification.
type Service interface {
	SubmitProof(ctx context.Context, customerID, sessionID uuid.UUID, proofURI string) (*models.CheckoutSession, error)
	Approve(ctx context.Context, sessionID uuid.UUID, adminNotes string) (*models.CheckoutSession, error)
	Reject(ctx context.Context, sessionID uuid.UUID, reason, adminNotes string) (*models.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error)
	ListSessions(ctx context.Context, filters checkout.ListFilters, params pagination.Params) (*ListResult, error)
}

type service struct {
	sessions *checkout.Repository
	now      func() time.Time
}

// NewService builds a payments service on top of checkout session storage.
func NewService(sessions *checkout.Repository) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	return &service{sessions: sessions, now: time.Now}, nil
}

// SubmitProof attaches a payment proof to the customer's own session. A
// rejected session may be resubmitted with a fresh proof.
func (s *service) SubmitProof(ctx context.Context, customerID, sessionID uuid.UUID, proofURI string) (*models.CheckoutSession, error) {
	proofURI = strings.TrimSpace(proofURI)
	if proofURI == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required")
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another customer")
	}

	next, err := lifecycle.NextPaymentStatus(session.PaymentStatus, lifecycle.PaymentActionSubmit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.PaymentStatus = next
	session.PaymentProofURI = &proofURI
	session.PaymentSubmittedAt = &now
	session.PaymentReviewedAt = nil
	session.RejectionReason = nil

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return session, nil
}

func (s *service) Approve(ctx context.Context, sessionID uuid.UUID, adminNotes string) (*models.CheckoutSession, error) {
	return s.review(ctx, sessionID, lifecycle.PaymentActionApprove, "", adminNotes)
}

// Reject requires a reason; the customer sees it alongside the rejected status
// and may resubmit.
func (s *service) Reject(ctx context.Context, sessionID uuid.UUID, reason, adminNotes string) (*models.CheckoutSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	return s.review(ctx, sessionID, lifecycle.PaymentActionReject, reason, adminNotes)
}

func (s *service) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	return s.load(ctx, sessionID)
}

func (s *service) ListSessions(ctx context.Context, filters checkout.ListFilters, params pagination.Params) (*ListResult, error) {
	sessions, total, err := s.sessions.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sessions")
	}
	return &ListResult{
		Sessions: sessions,
		Page:     pagination.PageFor(params, total),
	}, nil
}

func (s *service) review(ctx context.Context, sessionID uuid.UUID, action lifecycle.PaymentAction, reason, adminNotes string) (*models.CheckoutSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.NextPaymentStatus(session.PaymentStatus, action)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.PaymentStatus = next
	session.PaymentReviewedAt = &now
	if reason != "" {
		session.RejectionReason = &reason
	}
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		session.AdminNotes = &notes
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return session, nil
}

func (s *service) load(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return session, nil
}
