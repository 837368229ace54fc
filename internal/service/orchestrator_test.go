package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetcaller/backend/internal/models"
	"github.com/sheetcaller/backend/internal/telephony"
)

func newOrchestrator(store *fakeStore, d telephony.Dialer) *Orchestrator {
	return &Orchestrator{
		Store:    store,
		Dialer:   d,
		Scripts:  telephony.ScriptRenderer{Brand: "Lodha Group", DefaultLanguage: "EN", GatherTimeout: 5 * time.Second},
		BaseURL:  "https://caller.example.com/",
		CallerID: "+15550001111",
		Logger:   zerolog.Nop(),
	}
}

func TestPlaceCall(t *testing.T) {
	store := newFakeStore(models.Lead{ID: "42", Phone: "+919800000001", Status: models.StatusInProgress})
	d := &recordingDialer{sid: "CA123"}
	o := newOrchestrator(store, d)

	call, err := o.PlaceCall(context.Background(), "42", "+919800000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.CallSID != "CA123" || call.LeadID != "42" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if len(d.requests) != 1 {
		t.Fatalf("expected one dial, got %d", len(d.requests))
	}
	req := d.requests[0]
	if req.To != "+919800000001" || req.From != "+15550001111" {
		t.Fatalf("unexpected to/from: %+v", req)
	}
	if req.ScriptURL != "https://caller.example.com/call-script?customer_id=42" {
		t.Fatalf("unexpected script url: %s", req.ScriptURL)
	}
	if req.StatusCallbackURL != "https://caller.example.com/call-status?customer_id=42" {
		t.Fatalf("unexpected status url: %s", req.StatusCallbackURL)
	}
	if req.RingTimeout != 30*time.Second {
		t.Fatalf("expected 30s ring timeout, got %s", req.RingTimeout)
	}
	if len(store.Updates()) != 0 {
		t.Fatalf("placing a call must not write the lead")
	}
}

func TestPlaceCallErrors(t *testing.T) {
	store := newFakeStore(models.Lead{ID: "1"})

	o := newOrchestrator(store, &recordingDialer{sid: "CA1"})
	if _, err := o.PlaceCall(context.Background(), "", "+1"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing id, got %v", err)
	}
	if _, err := o.PlaceCall(context.Background(), "1", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing phone, got %v", err)
	}
	if _, err := o.PlaceCall(context.Background(), "2", "+1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	d := &recordingDialer{err: errors.New("21215: geo permission")}
	o = newOrchestrator(store, d)
	if _, err := o.PlaceCall(context.Background(), "1", "+1"); !errors.Is(err, ErrCallPlacementFailed) {
		t.Fatalf("expected ErrCallPlacementFailed, got %v", err)
	}
	if len(d.requests) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(d.requests))
	}
}

func TestRenderScript(t *testing.T) {
	store := newFakeStore(models.Lead{ID: "42", Project: "Crown Thane", Language: "HI"})
	o := newOrchestrator(store, &recordingDialer{})

	xml, err := o.RenderScript(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(xml, "Namaste!") || !strings.Contains(xml, "Crown Thane") {
		t.Fatalf("expected Hindi script with project, got %s", xml)
	}
	if !strings.Contains(xml, "https://caller.example.com/handle-input?cid=42") {
		t.Fatalf("expected input url in script, got %s", xml)
	}

	if _, err := o.RenderScript(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := o.RenderScript(context.Background(), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNextLeadEmptyQueue(t *testing.T) {
	store := newFakeStore(models.Lead{ID: "1", Phone: "+1", Status: models.StatusDone})
	o := newOrchestrator(store, &recordingDialer{})
	lead, err := o.NextLead(context.Background())
	if err != nil || lead != nil {
		t.Fatalf("expected empty queue, got %+v %v", lead, err)
	}

	store.fetchErr = errors.New("down")
	if _, err := o.NextLead(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
