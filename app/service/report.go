package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/macoc/registration-service/app/entity"
)

// ListDirectory returns the published teacher directory.
func (s *RegistrationService) ListDirectory(ctx context.Context) ([]entity.DirectoryEntry, error) {
	rows, err := s.rows.ListRows(ctx, entity.SheetDirectory)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.DirectoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := entity.DirectoryEntry{
			Name:     row.Field("name"),
			Category: row.Field("category"),
			City:     row.Field("city"),
			Phone:    row.Field("phone"),
			Email:    row.Field("email"),
			Website:  row.Field("website"),
		}
		if entry.Name == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReportPendingRegistrations lists rows still Pending after the cutoff
// across the given sheets. This is the operator-facing recovery path for
// confirmations lost to swallowed row-store failures: the webhook has
// already been acknowledged by then, so nobody retries on our behalf.
func (s *RegistrationService) ReportPendingRegistrations(ctx context.Context, sheetNames []string, olderThan time.Duration) ([]entity.PendingRow, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var pending []entity.PendingRow
	var firstErr error
	for _, sheetName := range sheetNames {
		rows, err := s.rows.ListRows(ctx, sheetName)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		for _, row := range rows {
			if row.Field(entity.ColumnPaymentStatus) != entity.PaymentStatusPending {
				continue
			}

			submittedAt, err := time.Parse(time.RFC3339, row.Field(entity.ColumnTimestamp))
			if err == nil && submittedAt.After(cutoff) {
				continue
			}

			_, rowNumber := row.Location()
			item := entity.PendingRow{
				SheetName:   sheetName,
				RowNumber:   rowNumber,
				SubmittedAt: submittedAt,
			}
			pending = append(pending, item)

			s.logger.WithFields(logrus.Fields{
				"sheet":        item.SheetName,
				"row":          item.RowNumber,
				"submitted_at": row.Field(entity.ColumnTimestamp),
			}).Warn("Registration still pending payment")
		}
	}

	return pending, firstErr
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
