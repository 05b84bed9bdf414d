// Package dispatch runs the outbound-call workflow: next pending lead,
// place the call, record the result.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dubeyashu123/Siaara-Backend/internal/leads"
)

// Result statuses returned by DispatchNext.
const (
	StatusComplete = "complete"
	StatusSkipped  = "skipped"
	StatusCalling  = "calling"
)

// Result is the outcome of one dispatch attempt.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	CallSID string `json:"call_sid,omitempty"`
	Row     int    `json:"row_number,omitempty"`
}

// CallPlacer places one outbound call and returns the provider call SID.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to, answerURL string) (string, error)
}

type Dispatcher struct {
	store     leads.Store
	calls     CallPlacer
	answerURL string
}

func New(store leads.Store, calls CallPlacer, answerURL string) *Dispatcher {
	return &Dispatcher{store: store, calls: calls, answerURL: answerURL}
}

// DispatchNext finds the first pending lead and dials it. A returned error
// means either the store was unreachable or the provider rejected the call;
// in both cases no status was written, so the lead stays pending.
//
// Note: there is no locking between the pending read and the status write,
// so concurrent triggers can dial the same lead twice. Single-operator use
// is assumed.
func (d *Dispatcher) DispatchNext(ctx context.Context) (Result, error) {
	lead, err := d.store.NextPending(ctx)
	if errors.Is(err, leads.ErrNoPending) {
		return Result{
			Status:  StatusComplete,
			Message: "No pending leads found in the Google Sheet.",
		}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: fetch pending lead: %w", err)
	}

	if lead.Phone == "" {
		slog.Warn("skipping lead with no phone number", "lead", lead.Name, "row", lead.Row)
		return Result{
			Status:  StatusSkipped,
			Message: fmt.Sprintf("Lead %s skipped (No Phone).", lead.Name),
			Row:     lead.Row,
		}, nil
	}

	slog.Info("dialing lead", "lead", lead.Name, "phone", lead.Phone, "row", lead.Row)

	callSID, err := d.calls.PlaceCall(ctx, lead.Phone, d.answerURL)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: place call for %s: %w", lead.Name, err)
	}

	// The call is already ringing; a failed write leaves the row pending
	// but must not fail the dispatch.
	if err := d.store.SetStatus(ctx, lead.Row, leads.StatusCalling, callSID); err != nil {
		slog.Error("failed to record calling status", "row", lead.Row, "error", err)
	}

	return Result{
		Status:  StatusCalling,
		Message: fmt.Sprintf("Call initiated for %s.", lead.Name),
		CallSID: callSID,
		Row:     lead.Row,
	}, nil
}
