package store

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsBackend stores rows in one worksheet of a Google spreadsheet.
type SheetsBackend struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewSheetsBackend opens the spreadsheet service. Pass option.WithCredentialsJSON
// for a service account.
func NewSheetsBackend(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*SheetsBackend, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsBackend{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}, nil
}

// EnsureWorksheet creates the worksheet with a header row when it is missing.
func (s *SheetsBackend) EnsureWorksheet(ctx context.Context) (created bool, err error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("open spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.worksheet {
			return false, nil
		}
	}

	add := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: s.worksheet,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: int64(len(Header)),
					},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, add).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("add worksheet %s: %w", s.worksheet, err)
	}

	header := &sheets.ValueRange{Values: [][]interface{}{toCells(Header)}}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.worksheet+"!A1:T1", header).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return true, fmt.Errorf("write header: %w", err)
	}
	return true, nil
}

// Identities reads the Name and Email columns below the header.
func (s *SheetsBackend) Identities(ctx context.Context) ([]Identity, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet+"!B2:C").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read identities: %w", err)
	}

	ids := make([]Identity, 0, len(resp.Values))
	for _, row := range resp.Values {
		var id Identity
		if len(row) > 0 {
			id.Name = fmt.Sprint(row[0])
		}
		if len(row) > 1 {
			id.Email = fmt.Sprint(row[1])
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *SheetsBackend) Append(ctx context.Context, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(row)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.worksheet+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
