package telephony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioDialer struct {
	client *twilio.RestClient
}

func NewTwilioDialer(accountSID, authToken string, timeout time.Duration) *TwilioDialer {
	c := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	c.SetTimeout(timeout)
	return &TwilioDialer{client: c}
}

func (d *TwilioDialer) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &api.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(req.From)
	params.SetUrl(req.ScriptURL)
	params.SetMethod("GET")
	params.SetStatusCallback(req.StatusCallbackURL)
	params.SetStatusCallbackEvent(StatusCallbackEvents)
	params.SetStatusCallbackMethod("POST")
	params.SetTimeout(int(req.RingTimeout / time.Second))
	params.SetRecord(false)

	resp, err := d.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("twilio create call: %w", err)
	}
	if resp == nil || resp.Sid == nil || *resp.Sid == "" {
		return "", errors.New("twilio create call: empty call sid")
	}
	return *resp.Sid, nil
}
