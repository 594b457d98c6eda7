package entity

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidToken = errors.New("invalid correlation token")

// CorrelationToken is the opaque string handed to a payment provider at
// order creation (PayPal custom_id, Stripe client_reference_id) and
// recovered from the provider's confirmation to locate the paid row.
type CorrelationToken struct {
	SheetName string
	RowNumber int
}

// String renders the wire form: a bare row number for the default sheet,
// "<sheet>:<row>" otherwise.
func (t CorrelationToken) String() string {
	if t.SheetName == "" || t.SheetName == SheetRegistrations {
		return strconv.Itoa(t.RowNumber)
	}
	return t.SheetName + ":" + strconv.Itoa(t.RowNumber)
}

// ParseCorrelationToken decodes a wire token. Sheet titles may themselves
// contain colons, so the row number is everything after the last colon.
func ParseCorrelationToken(raw string) (CorrelationToken, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CorrelationToken{}, ErrInvalidToken
	}

	sheet := SheetRegistrations
	rowPart := raw
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		if idx > 0 {
			sheet = raw[:idx]
		}
		rowPart = raw[idx+1:]
	}

	rowNumber, err := strconv.Atoi(rowPart)
	if err != nil || rowNumber < 1 {
		return CorrelationToken{}, ErrInvalidToken
	}

	return CorrelationToken{SheetName: sheet, RowNumber: rowNumber}, nil
}
