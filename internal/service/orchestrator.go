package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetcaller/backend/internal/models"
	"github.com/sheetcaller/backend/internal/telephony"
)

const DefaultRingTimeout = 30 * time.Second

// Orchestrator places outbound calls and renders the voice menu the provider
// fetches once the call connects.
type Orchestrator struct {
	Store       LeadStore
	Dialer      telephony.Dialer
	Scripts     telephony.ScriptRenderer
	BaseURL     string
	CallerID    string
	RingTimeout time.Duration
	Logger      zerolog.Logger
}

type PlacedCall struct {
	CallSID string
	LeadID  string
}

func (o *Orchestrator) ScriptURL(leadID string) string {
	return o.callbackURL("/call-script", "customer_id", leadID)
}

func (o *Orchestrator) StatusURL(leadID string) string {
	return o.callbackURL("/call-status", "customer_id", leadID)
}

func (o *Orchestrator) InputURL(leadID string) string {
	return o.callbackURL("/handle-input", "cid", leadID)
}

func (o *Orchestrator) callbackURL(path, param, leadID string) string {
	return strings.TrimRight(o.BaseURL, "/") + path + "?" + url.Values{param: {leadID}}.Encode()
}

// PlaceCall checks the lead exists, then asks the provider to dial phone.
// Failures are returned as is; nothing is retried here.
func (o *Orchestrator) PlaceCall(ctx context.Context, leadID, phone string) (PlacedCall, error) {
	leadID = strings.TrimSpace(leadID)
	phone = strings.TrimSpace(phone)
	if leadID == "" || phone == "" {
		return PlacedCall{}, fmt.Errorf("%w: customer_id and phone required", ErrInvalidRequest)
	}

	lead, err := o.Store.FetchByID(ctx, leadID)
	if err != nil {
		return PlacedCall{}, fmt.Errorf("%w: fetch %s: %v", ErrStoreUnavailable, leadID, err)
	}
	if lead == nil {
		return PlacedCall{}, fmt.Errorf("%w: %s", ErrNotFound, leadID)
	}

	ring := o.RingTimeout
	if ring <= 0 {
		ring = DefaultRingTimeout
	}
	sid, err := o.Dialer.PlaceCall(ctx, telephony.CallRequest{
		To:                phone,
		From:              o.CallerID,
		ScriptURL:         o.ScriptURL(leadID),
		StatusCallbackURL: o.StatusURL(leadID),
		RingTimeout:       ring,
	})
	if err != nil {
		return PlacedCall{}, fmt.Errorf("%w: %v", ErrCallPlacementFailed, err)
	}

	o.Logger.Info().
		Str("op", "place_call").
		Str("lead_id", leadID).
		Str("call_sid", sid).
		Msg("call initiated")
	return PlacedCall{CallSID: sid, LeadID: leadID}, nil
}

// RenderScript returns the voice menu markup for a lead.
func (o *Orchestrator) RenderScript(ctx context.Context, leadID string) (string, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return "", fmt.Errorf("%w: customer_id required", ErrInvalidRequest)
	}
	lead, err := o.Store.FetchByID(ctx, leadID)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", ErrStoreUnavailable, leadID, err)
	}
	if lead == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, leadID)
	}
	return o.Scripts.Render(*lead, o.InputURL(lead.ID))
}

// NextLead returns the next pending lead, or nil when the queue is empty.
func (o *Orchestrator) NextLead(ctx context.Context) (*models.Lead, error) {
	lead, err := o.Store.FetchNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch next: %v", ErrStoreUnavailable, err)
	}
	if lead == nil || lead.Phone == "" {
		return nil, nil
	}
	return lead, nil
}

func (o *Orchestrator) ListLeads(ctx context.Context) ([]models.Lead, error) {
	leads, err := o.Store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreUnavailable, err)
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return leads, nil
}
