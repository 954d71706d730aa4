package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/catalog"
	"github.com/medkitstore/medkit-backend/internal/checkout"
	"github.com/medkitstore/medkit-backend/internal/lifecycle"
	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/ordernum"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
	"github.com/medkitstore/medkit-backend/pkg/types"
)

const orderNumberMaxRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ListResult is one page of orders.
type ListResult struct {
	Orders []models.Order
	Page   pagination.Page
}

// Service handles order finalization and fulfillment.
type Service interface {
	AddDeliveryDetails(ctx context.Context, customerID, sessionID uuid.UUID, details types.Address) (*models.Order, error)
	UpdateDeliveryDetails(ctx context.Context, customerID, orderID uuid.UUID, details types.Address) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, trackingNumber *string) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo      *Repository
	sessions  *checkout.Repository
	catalog   *catalog.Repository
	tx        txRunner
	customers customerLoader
	now       func() time.Time
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo *Repository, sessions *checkout.Repository, catalogRepo *catalog.Repository, tx txRunner, customers customerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("checkout repository required")
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
	return &service{
		repo:      repo,
		sessions:  sessions,
		catalog:   catalogRepo,
		tx:        tx,
		customers: customers,
		now:       time.Now,
	}, nil
}

// AddDeliveryDetails finalizes an approved session into an order. Order
// creation, stock decrements and the session claim run in one transaction, so
// a shortfall on any line rolls the whole finalization back.
func (s *service) AddDeliveryDetails(ctx context.Context, customerID, sessionID uuid.UUID, details types.Address) (*models.Order, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if session.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another customer")
	}
	if session.PaymentStatus != enums.PaymentStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("delivery details require an approved payment, session is %s", session.PaymentStatus))
	}
	if session.OrderID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is already finalized")
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		SessionID:       session.ID,
		CustomerID:      customerID,
		CustomerInfo:    snapshotCustomer(customer),
		SubtotalCents:   session.SubtotalCents,
		ShippingCents:   session.ShippingCents,
		TotalCents:      session.TotalCents,
		DeliveryDetails: &details,
		Items:           make([]models.OrderItem, 0, len(session.Items)),
	}
	for _, item := range session.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			VariantName:       item.VariantName,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
		})
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txSessions := s.sessions.WithTx(tx)
		txCatalog := s.catalog.WithTx(tx)

		var createErr error
		for attempt := 0; attempt < orderNumberMaxRetries; attempt++ {
			number, err := ordernum.OrderNumber(s.now())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
			}
			order.OrderNumber = number

			created, createErr = txRepo.Create(ctx, order)
			if createErr == nil {
				break
			}
			if !db.IsUniqueViolation(createErr, "order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
			}
		}
		if createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
		}

		for _, item := range order.Items {
			affected, err := txCatalog.DecrementStock(ctx, item.ProductID, item.VariantName, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock ran out before finalization").
					WithDetails(map[string]any{
						"product_id": item.ProductID,
						"variant":    item.VariantName,
						"requested":  item.Quantity,
					})
			}
		}

		claimed, err := txSessions.ClaimForOrder(ctx, session.ID, created.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim session")
		}
		if claimed == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session is already finalized")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateDeliveryDetails replaces the address while the order is still
// processing.
func (s *service) UpdateDeliveryDetails(ctx context.Context, customerID, orderID uuid.UUID, details types.Address) (*models.Order, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	if order.Status != enums.OrderStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("delivery details are locked once the order is %s", order.Status))
	}

	order.DeliveryDetails = &details
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

// UpdateStatus applies an admin status change through the transition table and
// stamps the matching timestamp.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, trackingNumber *string) (*models.Order, error) {
	action, err := lifecycle.OrderActionFor(target)
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.NextOrderStatus(order.Status, action)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order.Status = next
	switch next {
	case enums.OrderStatusShipped:
		order.ShippedAt = &now
		if trackingNumber != nil && strings.TrimSpace(*trackingNumber) != "" {
			trimmed := strings.TrimSpace(*trackingNumber)
			order.TrackingNumber = &trimmed
		}
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &now
	case enums.OrderStatusCancelled:
		order.CancelledAt = &now
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Orders: rows, Page: pagination.PageFor(params, total)}, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return &ListResult{Orders: rows, Page: pagination.PageFor(params, total)}, nil
}

func validateDetails(details types.Address) error {
	if strings.TrimSpace(details.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient name is required")
	}
	if strings.TrimSpace(details.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact phone is required")
	}
	if strings.TrimSpace(details.Line1) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address line is required")
	}
	if strings.TrimSpace(details.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	return nil
}

func snapshotCustomer(customer *models.User) types.Address {
	info := types.Address{
		FullName: customer.FullName,
		Email:    customer.Email,
	}
	if customer.Phone != nil {
		info.Phone = *customer.Phone
	}
	if customer.Street != nil {
		info.Line1 = *customer.Street
	}
	if customer.City != nil {
		info.City = *customer.City
	}
	if customer.State != nil {
		info.Region = *customer.State
	}
	if customer.Zip != nil {
		info.PostalCode = *customer.Zip
	}
	if customer.Country != nil {
		info.Country = *customer.Country
	}
	return info
}
