package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/cart"
	"github.com/medkitstore/medkit-backend/internal/catalog"
	"github.com/medkitstore/medkit-backend/pkg/config"
	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/ordernum"
)

const defaultNumberRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type settingsLoader interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// BankDetails is the transfer target returned with every new session.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	Instructions  string `json:"instructions"`
}

// SessionResult pairs a created session with the bank transfer details the
// customer pays against.
type SessionResult struct {
	Session     *models.CheckoutSession
	BankDetails BankDetails
}

// Summary is the pre-checkout view of the live cart, falling back to the most
// recent session when the cart is empty.
type Summary struct {
	Cart          *models.Cart
	SubtotalCents int
	LastSession   *models.CheckoutSession
}

// Service exposes checkout session operations.
type Service interface {
	CreateSession(ctx context.Context, customerID uuid.UUID, shippingCents int, notes string) (*SessionResult, error)
	GetSummary(ctx context.Context, customerID uuid.UUID) (*Summary, error)
}

type service struct {
	repo          *Repository
	carts         *cart.Repository
	catalog       *catalog.Repository
	tx            txRunner
	customers     customerLoader
	settings      settingsLoader
	numberRetries int
	sessionTTL    time.Duration
}

// NewService builds a checkout service backed by the provided stack.
func NewService(cfg config.CheckoutConfig, repo *Repository, carts *cart.Repository, catalogRepo *catalog.Repository, tx txRunner, customers customerLoader, settings settingsLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	retries := cfg.NumberMaxRetries
	if retries < 1 {
		retries = defaultNumberRetries
	}
	return &service{
		repo:          repo,
		carts:         carts,
		catalog:       catalogRepo,
		tx:            tx,
		customers:     customers,
		settings:      settings,
		numberRetries: retries,
		sessionTTL:    cfg.SessionTTL,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, customerID uuid.UUID, shippingCents int, notes string) (*SessionResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if shippingCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping fee must be non-negative")
	}

	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	owner := cart.Owner{CustomerID: &customerID}
	shopperCart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(shopperCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	// Stock re-validation before snapshotting; reports the first failing line.
	for _, item := range shopperCart.Items {
		variant, err := s.catalog.FindVariantByName(ctx, item.ProductID, item.VariantName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("variant %q no longer available", item.VariantName))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		if item.Quantity > variant.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds stock").
				WithDetails(map[string]any{
					"product_id": item.ProductID,
					"variant":    item.VariantName,
					"requested":  item.Quantity,
					"available":  variant.Stock,
				})
		}
	}

	items := make([]models.CheckoutItem, 0, len(shopperCart.Items))
	for _, item := range shopperCart.Items {
		items = append(items, models.CheckoutItem{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			VariantName:       item.VariantName,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
		})
	}

	subtotal := shopperCart.TotalCents
	session := &models.CheckoutSession{
		CustomerID:    customerID,
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TotalCents:    subtotal + shippingCents,
		Notes:         notes,
	}

	var created *models.CheckoutSession
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCarts := s.carts.WithTx(tx)

		var createErr error
		for attempt := 0; attempt < s.numberRetries; attempt++ {
			number, err := ordernum.CheckoutNumber(time.Now())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session number")
			}
			session.SessionNumber = number

			created, createErr = txRepo.Create(ctx, session)
			if createErr == nil {
				break
			}
			if !db.IsUniqueViolation(createErr, "session_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create checkout session")
			}
		}
		if createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create checkout session")
		}

		if err := txCarts.DeleteItems(ctx, shopperCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "empty cart")
		}
		return txCarts.SetTotal(ctx, shopperCart.ID, 0)
	})
	if err != nil {
		return nil, err
	}

	bank, err := s.bankDetails(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionResult{Session: created, BankDetails: bank}, nil
}

func (s *service) GetSummary(ctx context.Context, customerID uuid.UUID) (*Summary, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	owner := cart.Owner{CustomerID: &customerID}
	shopperCart, err := s.carts.FindByOwner(ctx, owner)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	summary := &Summary{}
	if shopperCart != nil && len(shopperCart.Items) > 0 {
		summary.Cart = shopperCart
		summary.SubtotalCents = shopperCart.TotalCents
		return summary, nil
	}

	last, err := s.repo.FindLatestByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last session")
	}
	// Stale sessions are past their payment window and not worth resuming.
	if s.sessionTTL > 0 && time.Since(last.CreatedAt) > s.sessionTTL {
		return summary, nil
	}
	summary.LastSession = last
	return summary, nil
}

func (s *service) bankDetails(ctx context.Context) (BankDetails, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BankDetails{}, err
	}
	return BankDetails{
		BankName:      settings.BankName,
		AccountName:   settings.BankAccountName,
		AccountNumber: settings.BankAccountNumber,
		Instructions:  settings.PaymentInstructions,
	}, nil
}
