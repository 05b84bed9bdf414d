// Package leads reads and updates the spreadsheet-backed lead list.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Status values written back to the sheet.
const (
	StatusPending = "Pending"
	StatusCalling = "Calling"
)

// ErrNoPending means the store was reachable but holds no row whose status
// is "pending". Transport and auth failures are returned as distinct errors
// so callers can tell an empty sheet from an unreachable one.
var ErrNoPending = errors.New("leads: no pending lead")

// Lead is one row of the sheet. Row is the 1-based sheet row number,
// including the header row, so it can be passed straight back to SetStatus.
type Lead struct {
	Name    string
	Phone   string
	Status  string
	CallSID string
	Row     int
}

// Store is the lead-list boundary the dispatcher works against.
type Store interface {
	// NextPending returns the first lead whose status is "pending"
	// (case-insensitive), or ErrNoPending.
	NextPending(ctx context.Context) (Lead, error)
	// SetStatus writes the status cell and, when callSID is non-empty,
	// the call-identifier cell of the given row.
	SetStatus(ctx context.Context, row int, status, callSID string) error
}

// Column headers the scan resolves by name.
const (
	headerName   = "LeadName"
	headerPhone  = "Phone"
	headerStatus = "Status"
)

// scanPending walks a raw values matrix (header row first, the shape the
// Sheets values API returns) and yields the first pending lead.
func scanPending(values [][]interface{}) (Lead, error) {
	if len(values) < 2 {
		return Lead{}, ErrNoPending
	}

	header := values[0]
	nameCol, phoneCol, statusCol := -1, -1, -1
	for i, cell := range header {
		switch cellString(cell) {
		case headerName:
			nameCol = i
		case headerPhone:
			phoneCol = i
		case headerStatus:
			statusCol = i
		}
	}
	if statusCol < 0 {
		return Lead{}, fmt.Errorf("leads: sheet has no %q column", headerStatus)
	}

	for i, row := range values[1:] {
		if !strings.EqualFold(cellAt(row, statusCol), StatusPending) {
			continue
		}
		lead := Lead{
			Name:   cellAt(row, nameCol),
			Phone:  cellAt(row, phoneCol),
			Status: cellAt(row, statusCol),
			Row:    i + 2, // 1-based, plus the header row
		}
		if lead.Name == "" {
			lead.Name = "Customer"
		}
		return lead, nil
	}
	return Lead{}, ErrNoPending
}

func cellAt(row []interface{}, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return cellString(row[col])
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
