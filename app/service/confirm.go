package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/provider"
)

// CaptureOrder finalizes an approved PayPal order and, when settlement
// completed, marks the referenced registration paid. A row-store failure
// after a successful capture is logged only: the money was captured, so
// the caller is still owed the settlement status.
func (s *RegistrationService) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", ErrInvalidRequest
	}

	result, err := s.orders.CaptureOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	if result.Status != provider.OrderStatusCompleted {
		// Unsettled and cancelled orders simply never reach Paid.
		return result.Status, nil
	}

	if result.CustomID == "" {
		s.logger.WithField("order_id", orderID).Warn("Capture completed without a correlation token")
		return result.Status, nil
	}

	if err := s.markPaid(ctx, result.CustomID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": orderID,
			"token":    result.CustomID,
		}).Error("Failed to update payment status after capture")
	}

	return result.Status, nil
}

// HandleStripeWebhook verifies the signed payload and reconciles a
// completed checkout session. Verified events always yield a nil return
// to the caller, even when the row update fails: Stripe retries with
// at-least-once semantics, and retrying against a persistent internal
// failure would only storm the endpoint.
func (s *RegistrationService) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.webhooks.VerifyAndParseEvent(payload, signatureHeader)
	if err != nil {
		s.logger.WithError(err).Warn("Stripe webhook rejected")
		return ErrCallbackRejected
	}

	if event.Type != provider.EventCheckoutCompleted {
		return nil
	}

	if event.ClientReferenceID == "" {
		s.logger.WithField("event_id", event.ID).Warn("Checkout session has no client reference id")
		return nil
	}

	if err := s.markPaid(ctx, event.ClientReferenceID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id": event.ID,
			"token":    event.ClientReferenceID,
		}).Error("Failed to reconcile checkout session")
	}

	return nil
}

// markPaid is the idempotent update both confirmation paths converge on:
// locate the row and transition Pending to Paid at most once. A missing
// or already-paid row is a logged no-op, never an error to the remote
// caller. The status read and the write are not atomic; two concurrent
// deliveries can both observe Pending, but the duplicate write puts the
// same value in the same cell, so the race is accepted.
func (s *RegistrationService) markPaid(ctx context.Context, rawToken string) error {
	token, err := entity.ParseCorrelationToken(rawToken)
	if err != nil {
		s.logger.WithField("token", rawToken).Warn("Unparseable correlation token on payment confirmation")
		return nil
	}

	row, err := s.rows.FindRow(ctx, token.SheetName, token.RowNumber)
	if err != nil {
		return err
	}
	if row == nil {
		s.logger.WithFields(logrus.Fields{
			"sheet": token.SheetName,
			"row":   token.RowNumber,
		}).Warn("Registration row not found for payment confirmation")
		return nil
	}

	if row.Field(entity.ColumnPaymentStatus) == entity.PaymentStatusPaid {
		return nil
	}

	if err := row.SetField(entity.ColumnPaymentStatus, entity.PaymentStatusPaid); err != nil {
		return err
	}
	if err := row.Save(ctx); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"sheet": token.SheetName,
		"row":   token.RowNumber,
	}).Info("Registration marked paid")
	return nil
}
