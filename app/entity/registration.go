package entity

import "time"

// Control columns present on every managed sheet, always in this order
// ahead of the category-specific columns.
const (
	ColumnTimestamp     = "Timestamp"
	ColumnPaymentStatus = "Payment Status"
)

// Payment Status values. The only transition this service ever performs
// is Pending to Paid.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// Well-known sheet titles.
const (
	SheetRegistrations      = "Registrations"
	SheetTeacherMemberships = "Teacher Memberships"
	SheetDirectory          = "Directory"
)

// Submission is a flat key-value form submission as decoded from JSON.
type Submission map[string]interface{}

// Receipt identifies the stored row for a submitted registration.
type Receipt struct {
	RowNumber int
	SheetName string
}

// DirectoryEntry is one row of the published teacher directory.
type DirectoryEntry struct {
	Name     string
	Category string
	City     string
	Phone    string
	Email    string
	Website  string
}

// PendingRow is a registration that has not been reconciled to Paid,
// surfaced by the pending report for manual follow-up.
type PendingRow struct {
	SheetName   string
	RowNumber   int
	SubmittedAt time.Time
}
