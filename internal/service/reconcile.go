package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/sheetcaller/backend/internal/models"
)

type EventKind string

const (
	EventCallCompleted EventKind = "call_completed"
	EventCallNoAnswer  EventKind = "call_no_answer"
	EventCallBusy      EventKind = "call_busy"
	EventCallFailed    EventKind = "call_failed"
	// EventCallOther is a terminal provider status outside the four above, e.g. "canceled".
	EventCallOther EventKind = "call_other"
	// EventCallProgress is a non-terminal status; nothing is written for it.
	EventCallProgress EventKind = "call_progress"
	EventUserInput    EventKind = "user_input"
)

// LeadStore is the spreadsheet-backed lead list.
type LeadStore interface {
	FetchNext(ctx context.Context) (*models.Lead, error)
	FetchByID(ctx context.Context, id string) (*models.Lead, error)
	Update(ctx context.Context, u models.LeadUpdate) error
	ListAll(ctx context.Context) ([]models.Lead, error)
}

// Journal keeps an append-only record of callbacks. It is never read to make decisions.
type Journal interface {
	Record(ctx context.Context, ev models.CallEvent) error
}

type NopJournal struct{}

func (NopJournal) Record(context.Context, models.CallEvent) error { return nil }

type Event struct {
	Kind      EventKind
	LeadID    string
	CallSID   string
	RawStatus string
	Duration  int
	Digits    string
	Speech    string
}

type Outcome struct {
	Status   models.LeadStatus
	Response string
}

type Result struct {
	Outcome
	Applied     bool
	PriorStatus models.LeadStatus
}

// ParseCallStatus classifies a provider CallStatus token.
func ParseCallStatus(raw string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", fmt.Errorf("%w: empty CallStatus", ErrProviderCallback)
	case "completed":
		return EventCallCompleted, nil
	case "no-answer":
		return EventCallNoAnswer, nil
	case "busy":
		return EventCallBusy, nil
	case "failed":
		return EventCallFailed, nil
	case "queued", "initiated", "ringing", "in-progress":
		return EventCallProgress, nil
	default:
		return EventCallOther, nil
	}
}

// Decide maps an event to the lead state to persist. The second value is false
// when the event carries no outcome.
func Decide(ev Event) (Outcome, bool) {
	raw := strings.ToLower(strings.TrimSpace(ev.RawStatus))
	switch ev.Kind {
	case EventCallCompleted:
		return Outcome{Status: models.StatusDone, Response: "completed"}, true
	case EventCallNoAnswer:
		if raw == "" {
			raw = "no-answer"
		}
		return Outcome{Status: models.StatusPending, Response: models.ResponseNoAnswerPref + raw}, true
	case EventCallBusy:
		if raw == "" {
			raw = "busy"
		}
		return Outcome{Status: models.StatusPending, Response: models.ResponseNoAnswerPref + raw}, true
	case EventCallFailed:
		return Outcome{Status: models.StatusFailed, Response: models.ResponseCallFailed}, true
	case EventCallOther:
		if raw == "" {
			return Outcome{}, false
		}
		return Outcome{Status: models.StatusDone, Response: raw}, true
	case EventUserInput:
		return Outcome{Status: models.StatusDone, Response: NormalizeInput(ev.Digits, ev.Speech)}, true
	default:
		return Outcome{}, false
	}
}

var (
	speechNo  = []string{"no", "not", "nahin", "nahi", "nai", "nako", "two", "2"}
	speechYes = []string{"yes", "yeah", "yep", "sure", "haan", "han", "ha", "ho", "hoy", "interested", "one", "1"}
	// A negation next to one of these is an idiom ("no problem", "koi dikkat nahi"), not a refusal.
	speechIdioms = []string{"problem", "problems", "issue", "worries", "worry", "dikkat", "tension", "chinta", "baat"}
)

// NormalizeInput turns a keypad digit, or speech when no digit was pressed, into
// a customer choice. A refusal outweighs agreement so "not interested" is read
// correctly.
func NormalizeInput(digits, speech string) string {
	if d := strings.TrimSpace(digits); d != "" {
		switch d {
		case "1":
			return models.ResponseInterested
		case "2":
			return models.ResponseNotInterested
		default:
			return models.ResponseNoInput
		}
	}

	words := strings.FieldsFunc(strings.ToLower(speech), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var yes, no bool
	for i, w := range words {
		switch {
		case contains(speechNo, w):
			if !nextToIdiom(words, i) {
				no = true
			}
		case contains(speechYes, w):
			yes = true
		}
	}
	switch {
	case no:
		return models.ResponseNotInterested
	case yes:
		return models.ResponseInterested
	default:
		return models.ResponseNoInput
	}
}

func nextToIdiom(words []string, i int) bool {
	if i > 0 && contains(speechIdioms, words[i-1]) {
		return true
	}
	return i+1 < len(words) && contains(speechIdioms, words[i+1])
}

func contains(vocab []string, w string) bool {
	for _, v := range vocab {
		if v == w {
			return true
		}
	}
	return false
}

// Reconciler writes call outcomes back to the lead store.
//
// Status callbacks go through a read-then-write guard: the lead is re-read and
// only written while it is still IN_PROGRESS, so an answer the customer already
// gave is never replaced by a later call status. The sheet offers no
// compare-and-swap, so two callbacks landing inside the same read/write window can
// still interleave.
type Reconciler struct {
	Store   LeadStore
	Journal Journal
	Logger  zerolog.Logger
}

func (r *Reconciler) Apply(ctx context.Context, ev Event) (Result, error) {
	ev.LeadID = strings.TrimSpace(ev.LeadID)
	if ev.LeadID == "" {
		return Result{}, fmt.Errorf("%w: lead id required", ErrInvalidRequest)
	}
	if ev.Kind == EventUserInput {
		return r.applyUserInput(ctx, ev)
	}
	return r.applyCallStatus(ctx, ev)
}

// applyUserInput writes the customer's answer whatever the lead's status, but only
// for a lead that exists.
func (r *Reconciler) applyUserInput(ctx context.Context, ev Event) (Result, error) {
	outcome, _ := Decide(ev)
	lead, err := r.Store.FetchByID(ctx, ev.LeadID)
	if err != nil {
		return Result{Outcome: outcome}, fmt.Errorf("%w: fetch %s: %v", ErrStoreUnavailable, ev.LeadID, err)
	}
	if lead == nil {
		return Result{Outcome: outcome}, fmt.Errorf("%w: %s", ErrNotFound, ev.LeadID)
	}

	res := Result{Outcome: outcome, PriorStatus: lead.Status}
	if err := r.write(ctx, ev, outcome); err != nil {
		r.record(ctx, ev, res)
		return res, err
	}
	res.Applied = true
	r.record(ctx, ev, res)
	r.Logger.Info().
		Str("op", "user_input").
		Str("lead_id", ev.LeadID).
		Str("call_sid", ev.CallSID).
		Str("response", outcome.Response).
		Msg("customer response saved")
	return res, nil
}

func (r *Reconciler) applyCallStatus(ctx context.Context, ev Event) (Result, error) {
	outcome, ok := Decide(ev)
	if !ok {
		r.Logger.Debug().
			Str("op", "call_status").
			Str("lead_id", ev.LeadID).
			Str("call_sid", ev.CallSID).
			Str("call_status", ev.RawStatus).
			Msg("non-terminal call status ignored")
		r.record(ctx, ev, Result{})
		return Result{}, nil
	}

	lead, err := r.Store.FetchByID(ctx, ev.LeadID)
	if err != nil {
		return Result{Outcome: outcome}, fmt.Errorf("%w: fetch %s: %v", ErrStoreUnavailable, ev.LeadID, err)
	}
	if lead == nil {
		return Result{Outcome: outcome}, fmt.Errorf("%w: %s", ErrNotFound, ev.LeadID)
	}

	res := Result{Outcome: outcome, PriorStatus: lead.Status}
	if lead.Status != models.StatusInProgress {
		r.Logger.Info().
			Str("op", "call_status").
			Str("lead_id", ev.LeadID).
			Str("call_sid", ev.CallSID).
			Str("call_status", ev.RawStatus).
			Str("current_status", string(lead.Status)).
			Msg("lead already finalized, call status not applied")
		r.record(ctx, ev, res)
		return res, nil
	}

	if err := r.write(ctx, ev, outcome); err != nil {
		r.record(ctx, ev, res)
		return res, err
	}
	res.Applied = true
	r.record(ctx, ev, res)
	r.Logger.Info().
		Str("op", "call_status").
		Str("lead_id", ev.LeadID).
		Str("call_sid", ev.CallSID).
		Str("call_status", ev.RawStatus).
		Int("duration", ev.Duration).
		Str("status", string(outcome.Status)).
		Str("response", outcome.Response).
		Msg("call status applied")
	return res, nil
}

// SaveResponse is the manual override: it always marks the lead DONE.
func (r *Reconciler) SaveResponse(ctx context.Context, leadID, response string) error {
	leadID = strings.TrimSpace(leadID)
	if leadID == "" {
		return fmt.Errorf("%w: customer_id required", ErrInvalidRequest)
	}
	ev := Event{LeadID: leadID}
	return r.write(ctx, ev, Outcome{Status: models.StatusDone, Response: response})
}

func (r *Reconciler) write(ctx context.Context, ev Event, o Outcome) error {
	err := r.Store.Update(ctx, models.LeadUpdate{ID: ev.LeadID, Status: o.Status, Response: o.Response})
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrStoreUnavailable, ev.LeadID, err)
	}
	return nil
}

func (r *Reconciler) record(ctx context.Context, ev Event, res Result) {
	if r.Journal == nil {
		return
	}
	entry := models.CallEvent{
		LeadID:     ev.LeadID,
		CallSID:    ev.CallSID,
		Kind:       string(ev.Kind),
		RawStatus:  ev.RawStatus,
		Duration:   ev.Duration,
		Digits:     ev.Digits,
		Speech:     ev.Speech,
		Status:     res.Status,
		Response:   res.Response,
		Applied:    res.Applied,
		ReceivedAt: time.Now().UTC(),
	}
	if err := r.Journal.Record(ctx, entry); err != nil {
		r.Logger.Warn().Err(err).
			Str("lead_id", ev.LeadID).
			Str("call_sid", ev.CallSID).
			Msg("call journal write failed")
	}
}
