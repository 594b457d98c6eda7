package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

var ErrUnknownColumn = errors.New("unknown column")

// StoredRow is one registration row loaded from the spreadsheet. Field
// reads and SetField mutations are local; Save is the point of remote
// visibility. A failed Save may have partially applied, so callers must
// keep the surrounding protocol idempotent.
type StoredRow interface {
	Location() (sheetName string, rowNumber int)
	Field(name string) string
	SetField(name, value string) error
	Save(ctx context.Context) error
}

// RowStore wraps one Google Spreadsheet used as an append-only ledger,
// one sheet per registration category. Row numbers are 1-based sheet
// positions including the header row, so the first data row is 2.
type RowStore struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func NewRowStore(ctx context.Context, credentialsFile, spreadsheetID string) (*RowStore, error) {
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &RowStore{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// AppendRow appends one row to the named sheet, creating the sheet with
// the given header schema when it does not exist yet. It returns the new
// row's 1-based position.
func (s *RowStore) AppendRow(ctx context.Context, sheetName string, headers []string, fields map[string]string) (int, error) {
	if err := s.ensureSheet(ctx, sheetName, headers); err != nil {
		return 0, err
	}

	row := make([]interface{}, len(headers))
	for i, header := range headers {
		row[i] = fields[header]
	}

	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	resp, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, rangeForSheet(sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets: append to %q: %w", sheetName, err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("sheets: append to %q: no update range returned", sheetName)
	}

	rowNumber, err := rowNumberFromRange(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("sheets: append to %q: %w", sheetName, err)
	}
	return rowNumber, nil
}

// FindRow returns the row at the given position, or nil when the sheet
// has no such row. The underlying store offers no indexed lookup; the
// sheet is read in full and addressed by position.
func (s *RowStore) FindRow(ctx context.Context, sheetName string, rowNumber int) (StoredRow, error) {
	values, err := s.readAll(ctx, sheetName)
	if err != nil {
		return nil, err
	}
	if rowNumber < 2 || rowNumber > len(values) {
		return nil, nil
	}
	return s.newRow(sheetName, rowNumber, values[0], values[rowNumber-1]), nil
}

// ListRows returns every data row of the named sheet.
func (s *RowStore) ListRows(ctx context.Context, sheetName string) ([]StoredRow, error) {
	values, err := s.readAll(ctx, sheetName)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}

	rows := make([]StoredRow, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		rows = append(rows, s.newRow(sheetName, i+1, values[0], values[i]))
	}
	return rows, nil
}

func (s *RowStore) readAll(ctx context.Context, sheetName string) ([][]interface{}, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rangeForSheet(sheetName)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %q: %w", sheetName, err)
	}
	return resp.Values, nil
}

func (s *RowStore) ensureSheet(ctx context.Context, sheetName string, headers []string) error {
	doc, err := s.srv.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: load spreadsheet: %w", err)
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return nil
		}
	}

	_, err = s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: create sheet %q: %w", sheetName, err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, header := range headers {
		headerRow[i] = header
	}
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{headerRow}}
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, cellRange(sheetName, "A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write header for %q: %w", sheetName, err)
	}
	return nil
}

func (s *RowStore) updateCell(ctx context.Context, sheetName, a1 string, value string) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, cellRange(sheetName, a1), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s!%s: %w", sheetName, a1, err)
	}
	return nil
}

func (s *RowStore) newRow(sheetName string, rowNumber int, header, values []interface{}) *sheetRow {
	headers := make([]string, len(header))
	for i, v := range header {
		headers[i] = cellString(v)
	}
	return &sheetRow{
		store:     s,
		sheetName: sheetName,
		rowNumber: rowNumber,
		headers:   headers,
		values:    values,
		dirty:     map[int]string{},
	}
}

type sheetRow struct {
	store     *RowStore
	sheetName string
	rowNumber int
	headers   []string
	values    []interface{}
	dirty     map[int]string
}

func (r *sheetRow) Location() (string, int) {
	return r.sheetName, r.rowNumber
}

func (r *sheetRow) Field(name string) string {
	for i, header := range r.headers {
		if header != name {
			continue
		}
		if value, ok := r.dirty[i]; ok {
			return value
		}
		if i < len(r.values) {
			return cellString(r.values[i])
		}
		return ""
	}
	return ""
}

func (r *sheetRow) SetField(name, value string) error {
	for i, header := range r.headers {
		if header == name {
			r.dirty[i] = value
			return nil
		}
	}
	return fmt.Errorf("%w: %q in sheet %q", ErrUnknownColumn, name, r.sheetName)
}

// Save commits pending cell mutations. Each cell write is its own remote
// call, so a failure mid-save may leave earlier cells applied.
func (r *sheetRow) Save(ctx context.Context) error {
	for i, value := range r.dirty {
		a1 := columnLetter(i) + strconv.Itoa(r.rowNumber)
		if err := r.store.updateCell(ctx, r.sheetName, a1, value); err != nil {
			return err
		}
		if i < len(r.values) {
			r.values[i] = value
		}
		delete(r.dirty, i)
	}
	return nil
}

// columnLetter converts a 0-based column index to its A1 letter prefix
// (0 -> A, 25 -> Z, 26 -> AA).
func columnLetter(index int) string {
	letters := ""
	index++
	for index > 0 {
		index--
		letters = string(rune('A'+index%26)) + letters
		index /= 26
	}
	return letters
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// rangeForSheet quotes a sheet title for use as an A1 range covering the
// whole sheet. Single quotes inside titles are doubled per A1 notation.
func rangeForSheet(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
}

func cellRange(sheetName, a1 string) string {
	return rangeForSheet(sheetName) + "!" + a1
}

// rowNumberFromRange extracts the row of the first cell of an updated
// range such as "'Teacher Memberships'!A14:S14".
func rowNumberFromRange(updatedRange string) (int, error) {
	ref := updatedRange
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		ref = ref[idx+1:]
	}
	if idx := strings.Index(ref, ":"); idx >= 0 {
		ref = ref[:idx]
	}
	digits := strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	rowNumber, err := strconv.Atoi(digits)
	if err != nil || rowNumber < 1 {
		return 0, fmt.Errorf("cannot parse row number from range %q", updatedRange)
	}
	return rowNumber, nil
}
