package sink

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets appends rows to one sheet of a Google spreadsheet.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
	sheet         string
}

var (
	_ Sink         = (*Sheets)(nil)
	_ HeaderWriter = (*Sheets)(nil)
)

// NewSheets builds the Sheets service. Pass option.WithCredentialsFile for a
// service account.
func NewSheets(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*Sheets, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Sheets{service: service, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (s *Sheets) ReadAll(ctx context.Context) ([][]any, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheet+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %v", ErrSink, s.sheet, err)
	}

	return resp.Values, nil
}

// Append checks the key columns against the sheet before writing.
func (s *Sheets) Append(ctx context.Context, row []any, keyColumns []int) (AppendResult, error) {
	if key, ok := rowKey(row, keyColumns); ok {
		rows, err := s.ReadAll(ctx)
		if err != nil {
			return AppendResult{}, err
		}
		for _, existing := range rows {
			if k, ok := rowKey(existing, keyColumns); ok && k == key {
				return AppendResult{Message: duplicateMessage(key)}, nil
			}
		}
	}

	values := &sheets.ValueRange{Values: [][]interface{}{CleanRow(row)}}
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheet+"!A1", values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: appending to sheet %s: %v", ErrSink, s.sheet, err)
	}

	updated := int64(0)
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRows
	}

	return AppendResult{Accepted: true, Message: fmt.Sprintf("%d row(s) appended to %s", updated, s.sheet)}, nil
}

func (s *Sheets) EnsureHeader(ctx context.Context, header []string) error {
	rows, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}

	_, err = s.Append(ctx, row, nil)
	return err
}
