package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/factory"
	"github.com/macoc/registration-service/app/provider"
	"github.com/macoc/registration-service/app/repository"
)

type rowStore interface {
	AppendRow(ctx context.Context, sheetName string, headers []string, fields map[string]string) (int, error)
	FindRow(ctx context.Context, sheetName string, rowNumber int) (repository.StoredRow, error)
	ListRows(ctx context.Context, sheetName string) ([]repository.StoredRow, error)
}

type paymentOrders interface {
	CreateOrder(ctx context.Context, input provider.CreateOrderInput) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*provider.CaptureResult, error)
}

type webhookVerifier interface {
	VerifyAndParseEvent(payload []byte, signatureHeader string) (*provider.CheckoutEvent, error)
}

// RegistrationService carries the registration lifecycle: intake into
// the row store, payment order creation, and the two confirmation paths
// that converge on the idempotent status update.
type RegistrationService struct {
	rows     rowStore
	orders   paymentOrders
	webhooks webhookVerifier
	logger   logrus.FieldLogger
}

func NewRegistrationService(rows rowStore, orders paymentOrders, webhooks webhookVerifier) *RegistrationService {
	return &RegistrationService{
		rows:     rows,
		orders:   orders,
		webhooks: webhooks,
		logger:   factory.NewModuleLogger("registration-service"),
	}
}

// SubmitRegistration validates a submission against the category schema
// and appends it as a Pending row. Intake is not idempotent: identical
// submissions create distinct rows; deduplication happens only at
// payment confirmation.
func (s *RegistrationService) SubmitRegistration(ctx context.Context, schema entity.CategorySchema, submission entity.Submission) (*entity.Receipt, error) {
	sheetName := schema.SheetName
	if schema.SheetNameKey != "" {
		if !fieldPresent(submission, schema.SheetNameKey) {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, schema.SheetNameKey)
		}
		sheetName = renderValue(submission[schema.SheetNameKey])
	}

	for _, col := range schema.Columns {
		if col.Required && !fieldPresent(submission, col.Key) {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, col.Key)
		}
	}

	fields := map[string]string{
		entity.ColumnTimestamp:     time.Now().UTC().Format(time.RFC3339),
		entity.ColumnPaymentStatus: entity.PaymentStatusPending,
	}
	for _, col := range schema.Columns {
		fields[col.Header] = renderValue(submission[col.Key])
	}

	rowNumber, err := s.rows.AppendRow(ctx, sheetName, schema.HeaderRow(), fields)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"category": schema.Category,
		"sheet":    sheetName,
		"row":      rowNumber,
	}).Info("Registration stored")

	return &entity.Receipt{RowNumber: rowNumber, SheetName: sheetName}, nil
}

// fieldPresent reports whether a required field carries a usable value.
// Missing keys, nil, empty strings and empty lists count as absent;
// zero numbers and false are legitimate values.
func fieldPresent(submission entity.Submission, key string) bool {
	value, ok := submission[key]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	return true
}

func renderValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
