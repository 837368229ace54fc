package telephony

import (
	"context"
	"time"
)

// StatusCallbackEvents are the call progress events the status callback subscribes to.
var StatusCallbackEvents = []string{"completed", "no-answer", "busy", "failed"}

type CallRequest struct {
	To                string
	From              string
	ScriptURL         string
	StatusCallbackURL string
	RingTimeout       time.Duration
}

// Dialer places outbound calls. It returns the provider's call identifier.
type Dialer interface {
	PlaceCall(ctx context.Context, req CallRequest) (string, error)
}
