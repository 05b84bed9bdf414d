package leads

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Fixed write positions, matching the sheet layout: column 5 holds Status,
// column 6 holds the provider call identifier.
const (
	statusColumn  = "E"
	callSIDColumn = "F"
	sheetName     = "Sheet1"
)

// SheetsStore is the Google Sheets implementation of Store. One spreadsheet,
// first worksheet, header row first.
type SheetsStore struct {
	svc     *sheets.Service
	sheetID string
}

// NewSheetsStore builds a store over a service-account credentials file.
func NewSheetsStore(ctx context.Context, sheetID, credentialsFile string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("leads: create sheets service: %w", err)
	}
	return &SheetsStore{svc: svc, sheetID: sheetID}, nil
}

func (s *SheetsStore) NextPending(ctx context.Context) (Lead, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, sheetName).Context(ctx).Do()
	if err != nil {
		return Lead{}, fmt.Errorf("leads: read sheet: %w", err)
	}
	return scanPending(resp.Values)
}

func (s *SheetsStore) SetStatus(ctx context.Context, row int, status, callSID string) error {
	if err := s.updateCell(ctx, statusColumn, row, status); err != nil {
		return fmt.Errorf("leads: write status: %w", err)
	}
	if callSID != "" {
		if err := s.updateCell(ctx, callSIDColumn, row, callSID); err != nil {
			return fmt.Errorf("leads: write call sid: %w", err)
		}
	}
	slog.Info("lead status updated", "row", row, "status", status)
	return nil
}

func (s *SheetsStore) updateCell(ctx context.Context, column string, row int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", sheetName, column, row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.sheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
