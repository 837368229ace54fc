package telephony

import (
	"context"

	"github.com/sheetcaller/backend/internal/utils"
)

// MockDialer stands in for the provider when no credentials are configured.
type MockDialer struct {
	Err error
}

func (m MockDialer) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	return utils.FakeCallSID(req.To + "|" + req.ScriptURL), nil
}
