package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/provider"
)

// Currency is fixed; the competition charges in US dollars only.
const (
	currencyCode       = "USD"
	defaultDescription = "MACOC Registration"
)

type CreateOrderInput struct {
	RegistrationID int
	SheetName      string
	Amount         float64
	Description    string
}

// CreatePaymentOrder asks PayPal for a CAPTURE-intent order carrying the
// registration's correlation token. Nothing is written to the row store;
// the row stays Pending until a confirmation path fires, so this call is
// safe to retry from the client.
func (s *RegistrationService) CreatePaymentOrder(ctx context.Context, input CreateOrderInput) (string, error) {
	if input.RegistrationID < 1 || input.Amount <= 0 {
		return "", ErrInvalidRequest
	}

	token := entity.CorrelationToken{
		SheetName: strings.TrimSpace(input.SheetName),
		RowNumber: input.RegistrationID,
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = defaultDescription
	}

	orderID, err := s.orders.CreateOrder(ctx, provider.CreateOrderInput{
		CustomID:    token.String(),
		Amount:      strconv.FormatFloat(input.Amount, 'f', 2, 64),
		Currency:    currencyCode,
		Description: description,
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"token":    token.String(),
	}).Info("Payment order created")

	return orderID, nil
}
