package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/macoc/registration-service/app/entity"
	"github.com/macoc/registration-service/app/provider"
	"github.com/macoc/registration-service/app/repository"
)

type fakeRow struct {
	sheetName string
	rowNumber int
	fields    map[string]string
	staged    map[string]string

	saveCount int
	saveErr   error
}

func (r *fakeRow) Location() (string, int) {
	return r.sheetName, r.rowNumber
}

func (r *fakeRow) Field(name string) string {
	if value, ok := r.staged[name]; ok {
		return value
	}
	return r.fields[name]
}

func (r *fakeRow) SetField(name, value string) error {
	if r.staged == nil {
		r.staged = map[string]string{}
	}
	r.staged[name] = value
	return nil
}

func (r *fakeRow) Save(context.Context) error {
	r.saveCount++
	if r.saveErr != nil {
		return r.saveErr
	}
	for name, value := range r.staged {
		r.fields[name] = value
	}
	r.staged = nil
	return nil
}

type fakeRowStore struct {
	sheets map[string][]*fakeRow

	appendErr error
	listErr   error
	findCalls int
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{sheets: map[string][]*fakeRow{}}
}

func (s *fakeRowStore) AppendRow(_ context.Context, sheetName string, _ []string, fields map[string]string) (int, error) {
	if s.appendErr != nil {
		return 0, s.appendErr
	}
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	// Header occupies row 1, so the first data row is 2.
	rowNumber := len(s.sheets[sheetName]) + 2
	row := &fakeRow{sheetName: sheetName, rowNumber: rowNumber, fields: copied}
	s.sheets[sheetName] = append(s.sheets[sheetName], row)
	return rowNumber, nil
}

func (s *fakeRowStore) FindRow(_ context.Context, sheetName string, rowNumber int) (repository.StoredRow, error) {
	s.findCalls++
	for _, row := range s.sheets[sheetName] {
		if row.rowNumber == rowNumber {
			return row, nil
		}
	}
	return nil, nil
}

func (s *fakeRowStore) ListRows(_ context.Context, sheetName string) ([]repository.StoredRow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	items := append([]*fakeRow(nil), s.sheets[sheetName]...)
	sort.Slice(items, func(i, j int) bool { return items[i].rowNumber < items[j].rowNumber })
	rows := make([]repository.StoredRow, 0, len(items))
	for _, row := range items {
		rows = append(rows, row)
	}
	return rows, nil
}

type fakeOrders struct {
	lastCreateInput provider.CreateOrderInput
	createID        string
	createErr       error

	captureResult *provider.CaptureResult
	captureErr    error
}

func (o *fakeOrders) CreateOrder(_ context.Context, input provider.CreateOrderInput) (string, error) {
	o.lastCreateInput = input
	if o.createErr != nil {
		return "", o.createErr
	}
	return o.createID, nil
}

func (o *fakeOrders) CaptureOrder(context.Context, string) (*provider.CaptureResult, error) {
	if o.captureErr != nil {
		return nil, o.captureErr
	}
	return o.captureResult, nil
}

type fakeWebhooks struct {
	event *provider.CheckoutEvent
	err   error
}

func (w *fakeWebhooks) VerifyAndParseEvent([]byte, string) (*provider.CheckoutEvent, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.event, nil
}

func soloPianoSubmission() entity.Submission {
	return entity.Submission{
		"teacherFirstName": "Anna", "teacherLastName": "Lee", "teacherEmail": "anna@example.com", "teacherPhone": "555-0100",
		"studentFirstName": "Ben", "studentLastName": "Kim", "studentEmail": "ben@example.com",
		"dateOfBirth": "2012-04-01", "studentAge": "14",
		"division": "Junior", "section": "A",
		"repertoire1Title": "Sonata", "repertoire1Composer": "Mozart", "repertoire1TimePeriod": "Classical",
		"repertoire2Title": "Etude", "repertoire2Composer": "Chopin", "repertoire2TimePeriod": "Romantic",
	}
}

func TestSubmitRegistrationAppendsPendingRow(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	receipt, err := svc.SubmitRegistration(context.Background(), entity.SoloPianoSchema(), soloPianoSubmission())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if receipt.RowNumber != 2 || receipt.SheetName != entity.SheetRegistrations {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	row := store.sheets[entity.SheetRegistrations][0]
	if row.fields[entity.ColumnPaymentStatus] != entity.PaymentStatusPending {
		t.Fatalf("expected Pending status, got %q", row.fields[entity.ColumnPaymentStatus])
	}
	if _, err := time.Parse(time.RFC3339, row.fields[entity.ColumnTimestamp]); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", row.fields[entity.ColumnTimestamp])
	}
	if row.fields["Student First Name"] != "Ben" {
		t.Fatalf("unexpected mapped field: %q", row.fields["Student First Name"])
	}
}

func TestSubmitRegistrationIsNotIdempotent(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	first, err := svc.SubmitRegistration(context.Background(), entity.SoloPianoSchema(), soloPianoSubmission())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := svc.SubmitRegistration(context.Background(), entity.SoloPianoSchema(), soloPianoSubmission())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if first.RowNumber == second.RowNumber {
		t.Fatal("identical submissions must create distinct rows")
	}
}

func TestSubmitRegistrationReportsFirstMissingField(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	submission := soloPianoSubmission()
	delete(submission, "studentLastName")
	submission["repertoire1Title"] = ""

	_, err := svc.SubmitRegistration(context.Background(), entity.SoloPianoSchema(), submission)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing field error, got %v", err)
	}
	// studentLastName precedes repertoire1Title in column order.
	if !strings.Contains(err.Error(), "studentLastName") {
		t.Fatalf("expected first missing field to be named, got %q", err.Error())
	}
	if len(store.sheets[entity.SheetRegistrations]) != 0 {
		t.Fatal("no row may be created on validation failure")
	}
}

func TestSubmitRegistrationZeroAndFalseAreValidValues(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	schema := entity.CategorySchema{
		Category:  "test",
		SheetName: "Test",
		Columns: []entity.Column{
			{Header: "Amount", Key: "amount", Required: true},
			{Header: "Returning", Key: "returning", Required: true},
		},
	}
	receipt, err := svc.SubmitRegistration(context.Background(), schema, entity.Submission{
		"amount":    float64(0),
		"returning": false,
	})
	if err != nil {
		t.Fatalf("zero and false must pass the presence check: %v", err)
	}

	row := store.sheets["Test"][receipt.RowNumber-2]
	if row.fields["Amount"] != "0" || row.fields["Returning"] != "false" {
		t.Fatalf("unexpected rendering: %+v", row.fields)
	}
}

func TestSubmitRegistrationSheetFromDivision(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	submission := entity.Submission{
		"studentFirstName": "Mia", "studentLastName": "Park", "instrument": "Violin",
		"section": "B", "studentAge": "12", "dateOfBirth": "2014-02-03",
		"composer": "Bach", "pieceTitle": "Partita", "duration": "4:30",
		"pianistName": "Jo", "pianistPhone": "555-0101", "pianistEmail": "jo@example.com",
		"teacherName": "Anna Lee", "teacherPhone": "555-0100", "teacherEmail": "anna@example.com",
		"parentName": "Sam Park", "parentPhone": "555-0102", "parentEmail": "sam@example.com",
		"parentStreetAddress": "1 Main St", "parentCity": "Rockville", "parentState": "MD", "parentZipCode": "20850",
		"crossDivision": "No",
		"division":      "Violin",
	}

	receipt, err := svc.SubmitRegistration(context.Background(), entity.StringDivisionSchema(), submission)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if receipt.SheetName != "Violin" {
		t.Fatalf("expected division sheet, got %q", receipt.SheetName)
	}

	delete(submission, "division")
	if _, err := svc.SubmitRegistration(context.Background(), entity.StringDivisionSchema(), submission); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing division error, got %v", err)
	}
}

func TestSubmitRegistrationJoinsProductSelections(t *testing.T) {
	store := newFakeRowStore()
	svc := NewRegistrationService(store, &fakeOrders{}, &fakeWebhooks{})

	submission := entity.Submission{
		"firstName": "Anna", "lastName": "Lee",
		"streetAddress": "1 Main St", "city": "Rockville", "state": "MD", "zipCode": "20850",
		"email": "anna@example.com", "mobileNumber": "555-0100", "phoneNumber": "555-0103",
		"instrument": "Piano", "helpPreference": "Judging",
		"selectedProducts": []interface{}{"Membership", "Directory Listing"},
		"totalAmount":      float64(85),
	}

	receipt, err := svc.SubmitRegistration(context.Background(), entity.TeacherMembershipSchema(), submission)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if receipt.SheetName != entity.SheetTeacherMemberships {
		t.Fatalf("unexpected sheet: %q", receipt.SheetName)
	}

	row := store.sheets[entity.SheetTeacherMemberships][0]
	if row.fields["Selected Products"] != "Membership, Directory Listing" {
		t.Fatalf("unexpected products rendering: %q", row.fields["Selected Products"])
	}
	if row.fields["Total Amount"] != "85" {
		t.Fatalf("unexpected amount rendering: %q", row.fields["Total Amount"])
	}

	submission["selectedProducts"] = []interface{}{}
	if _, err := svc.SubmitRegistration(context.Background(), entity.TeacherMembershipSchema(), submission); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected missing selectedProducts error, got %v", err)
	}
}

func TestCreatePaymentOrderEmbedsCorrelationToken(t *testing.T) {
	orders := &fakeOrders{createID: "ORDER-1"}
	svc := NewRegistrationService(newFakeRowStore(), orders, &fakeWebhooks{})

	orderID, err := svc.CreatePaymentOrder(context.Background(), CreateOrderInput{
		RegistrationID: 7,
		SheetName:      "Piano",
		Amount:         60,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if orderID != "ORDER-1" {
		t.Fatalf("unexpected order id: %s", orderID)
	}
	if orders.lastCreateInput.CustomID != "Piano:7" {
		t.Fatalf("unexpected custom id: %s", orders.lastCreateInput.CustomID)
	}
	if orders.lastCreateInput.Amount != "60.00" || orders.lastCreateInput.Currency != "USD" {
		t.Fatalf("unexpected amount: %+v", orders.lastCreateInput)
	}
	if orders.lastCreateInput.Description != defaultDescription {
		t.Fatalf("unexpected description: %s", orders.lastCreateInput.Description)
	}
}

func TestCreatePaymentOrderDefaultSheetUsesBareRowToken(t *testing.T) {
	orders := &fakeOrders{createID: "ORDER-2"}
	svc := NewRegistrationService(newFakeRowStore(), orders, &fakeWebhooks{})

	if _, err := svc.CreatePaymentOrder(context.Background(), CreateOrderInput{RegistrationID: 2, Amount: 60}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if orders.lastCreateInput.CustomID != "2" {
		t.Fatalf("expected bare row token, got %q", orders.lastCreateInput.CustomID)
	}
}

func TestCreatePaymentOrderValidatesInput(t *testing.T) {
	svc := NewRegistrationService(newFakeRowStore(), &fakeOrders{}, &fakeWebhooks{})

	if _, err := svc.CreatePaymentOrder(context.Background(), CreateOrderInput{Amount: 60}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if _, err := svc.CreatePaymentOrder(context.Background(), CreateOrderInput{RegistrationID: 2}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
