package lifecycle

import (
	"fmt"

	"github.com/medkitstore/medkit-backend/pkg/enums"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

// PaymentAction identifies a requested payment-state change.
type PaymentAction string

const (
	PaymentActionSubmit  PaymentAction = "submit"
	PaymentActionApprove PaymentAction = "approve"
	PaymentActionReject  PaymentAction = "reject"
)

// OrderAction identifies a requested fulfillment-state change.
type OrderAction string

const (
	OrderActionShip    OrderAction = "ship"
	OrderActionDeliver OrderAction = "deliver"
	OrderActionCancel  OrderAction = "cancel"
)

type paymentTransition struct {
	from   enums.PaymentStatus
	action PaymentAction
}

type orderTransition struct {
	from   enums.OrderStatus
	action OrderAction
}

// Resubmission after a rejection is allowed; everything else is single-shot.
var paymentTransitions = map[paymentTransition]enums.PaymentStatus{
	{enums.PaymentStatusPending, PaymentActionSubmit}:    enums.PaymentStatusSubmitted,
	{enums.PaymentStatusRejected, PaymentActionSubmit}:   enums.PaymentStatusSubmitted,
	{enums.PaymentStatusSubmitted, PaymentActionApprove}: enums.PaymentStatusApproved,
	{enums.PaymentStatusSubmitted, PaymentActionReject}:  enums.PaymentStatusRejected,
}

var orderTransitions = map[orderTransition]enums.OrderStatus{
	{enums.OrderStatusProcessing, OrderActionShip}:   enums.OrderStatusShipped,
	{enums.OrderStatusShipped, OrderActionDeliver}:   enums.OrderStatusDelivered,
	{enums.OrderStatusProcessing, OrderActionCancel}: enums.OrderStatusCancelled,
}

// NextPaymentStatus returns the status produced by applying action to current,
// or a state-conflict error when the transition is not in the table.
func NextPaymentStatus(current enums.PaymentStatus, action PaymentAction) (enums.PaymentStatus, error) {
	next, ok := paymentTransitions[paymentTransition{current, action}]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot %s payment in status %s", action, current))
	}
	return next, nil
}

// NextOrderStatus returns the status produced by applying action to current,
// or a state-conflict error when the transition is not in the table.
func NextOrderStatus(current enums.OrderStatus, action OrderAction) (enums.OrderStatus, error) {
	next, ok := orderTransitions[orderTransition{current, action}]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot %s order in status %s", action, current))
	}
	return next, nil
}

// OrderActionFor maps a target status to the action that reaches it. Admin
// status updates arrive as target statuses rather than verbs.
func OrderActionFor(target enums.OrderStatus) (OrderAction, error) {
	switch target {
	case enums.OrderStatusShipped:
		return OrderActionShip, nil
	case enums.OrderStatusDelivered:
		return OrderActionDeliver, nil
	case enums.OrderStatusCancelled:
		return OrderActionCancel, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("no action reaches order status %s", target))
	}
}
