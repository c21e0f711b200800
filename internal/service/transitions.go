package service

import (
	"github.com/flexprice/subscriptions/internal/domain/invoice"
	"github.com/flexprice/subscriptions/internal/domain/subscription"
	ierr "github.com/flexprice/subscriptions/internal/errors"
	"github.com/flexprice/subscriptions/internal/types"
)

type subscriptionTransitionKey struct {
	from   types.SubscriptionStatus
	action types.SubscriptionAction
}

// subscriptionTransitions is the complete set of legal subscription moves.
// Anything not listed is an illegal transition.
var subscriptionTransitions = map[subscriptionTransitionKey]types.SubscriptionStatus{
	{types.SubscriptionStatusDraft, types.SubscriptionActionQuote}:        types.SubscriptionStatusQuotation,
	{types.SubscriptionStatusQuotation, types.SubscriptionActionConfirm}:  types.SubscriptionStatusConfirmed,
	{types.SubscriptionStatusConfirmed, types.SubscriptionActionActivate}: types.SubscriptionStatusActive,
	{types.SubscriptionStatusActive, types.SubscriptionActionClose}:       types.SubscriptionStatusClosed,
}

// lines may only change before the customer confirms
var subscriptionEditableStatuses = map[types.SubscriptionStatus]bool{
	types.SubscriptionStatusDraft:     true,
	types.SubscriptionStatusQuotation: true,
}

func nextSubscriptionStatus(sub *subscription.Subscription, action types.SubscriptionAction) (types.SubscriptionStatus, error) {
	next, ok := subscriptionTransitions[subscriptionTransitionKey{sub.SubscriptionStatus, action}]
	if !ok {
		return "", illegalSubscriptionTransition(sub, action)
	}
	return next, nil
}

func illegalSubscriptionTransition(sub *subscription.Subscription, action types.SubscriptionAction) error {
	return ierr.NewErrorf("cannot %s subscription %s in status %s", action, sub.ID, sub.SubscriptionStatus).
		WithHintf("Subscription in status %s does not allow %s", sub.SubscriptionStatus, action).
		WithReportableDetails(map[string]any{
			"subscription_id": sub.ID,
			"current_status":  sub.SubscriptionStatus,
			"action":          action,
		}).
		Mark(ierr.ErrIllegalTransition)
}

type invoiceTransitionKey struct {
	from   types.InvoiceStatus
	action types.InvoiceAction
}

var invoiceTransitions = map[invoiceTransitionKey]types.InvoiceStatus{
	{types.InvoiceStatusDraft, types.InvoiceActionConfirm}:    types.InvoiceStatusConfirmed,
	{types.InvoiceStatusConfirmed, types.InvoiceActionPay}:    types.InvoiceStatusPaid,
	{types.InvoiceStatusConfirmed, types.InvoiceActionCancel}: types.InvoiceStatusCanceled,
}

func nextInvoiceStatus(inv *invoice.Invoice, action types.InvoiceAction) (types.InvoiceStatus, error) {
	next, ok := invoiceTransitions[invoiceTransitionKey{inv.InvoiceStatus, action}]
	if !ok {
		return "", illegalInvoiceTransition(inv, action)
	}
	return next, nil
}

func illegalInvoiceTransition(inv *invoice.Invoice, action types.InvoiceAction) error {
	return ierr.NewErrorf("cannot %s invoice %s in status %s", action, inv.ID, inv.InvoiceStatus).
		WithHintf("Invoice in status %s does not allow %s", inv.InvoiceStatus, action).
		WithReportableDetails(map[string]any{
			"invoice_id":     inv.ID,
			"current_status": inv.InvoiceStatus,
			"action":         action,
		}).
		Mark(ierr.ErrIllegalTransition)
}
