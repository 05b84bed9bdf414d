// Package telephony wraps the Twilio REST API for outbound call control.
package telephony

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/dubeyashu123/Siaara-Backend/internal/telephony/twiml"
)

// Client places outbound calls and pushes TwiML into live ones.
type Client struct {
	rest *twilio.RestClient
	from string
}

func NewClient(accountSID, authToken, fromNumber string) *Client {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Client{rest: rest, from: fromNumber}
}

// PlaceCall dials the lead and points the answer webhook at answerURL.
// Returns the provider-assigned call SID.
func (c *Client) PlaceCall(ctx context.Context, to, answerURL string) (string, error) {
	params := &api.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetUrl(answerURL)
	params.SetMethod("POST")

	resp, err := c.rest.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("telephony: create call: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("telephony: create call: provider returned no call sid")
	}
	slog.Info("call initiated", "call_sid", *resp.Sid, "to", to)
	return *resp.Sid, nil
}

// UpdateCall replaces the live call's instructions with doc. Used to speak
// the agent's reply into an in-progress call.
func (c *Client) UpdateCall(ctx context.Context, callSID string, doc *twiml.Document) error {
	body, err := doc.XML()
	if err != nil {
		return err
	}
	params := &api.UpdateCallParams{}
	params.SetTwiml(string(body))

	if _, err := c.rest.Api.UpdateCall(callSID, params); err != nil {
		return fmt.Errorf("telephony: update call %s: %w", callSID, err)
	}
	return nil
}
