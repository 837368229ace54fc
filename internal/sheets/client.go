package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sheetcaller/backend/internal/models"
)

// ErrUnavailable wraps every transport, status and decode failure of the web app.
var ErrUnavailable = errors.New("lead store unavailable")

var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// Client talks to the Apps Script web app that fronts the lead sheet.
// Operations are selected with the "action" query parameter.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSpace(baseURL),
		Client:  &http.Client{Timeout: timeout},
	}
}

// FetchNext returns the next lead to call, or nil when the queue is empty.
func (c *Client) FetchNext(ctx context.Context) (*models.Lead, error) {
	var rec *leadRecord
	if err := c.get(ctx, url.Values{"action": {"getNextCustomer"}}, &rec); err != nil {
		return nil, err
	}
	if err := rec.failure("getNextCustomer"); err != nil {
		return nil, err
	}
	return rec.toLead(), nil
}

// FetchByID returns nil when the sheet has no row with that id.
func (c *Client) FetchByID(ctx context.Context, id string) (*models.Lead, error) {
	var rec *leadRecord
	if err := c.get(ctx, url.Values{"action": {"getById"}, "id": {id}}, &rec); err != nil {
		return nil, err
	}
	if err := rec.failure("getById " + id); err != nil {
		return nil, err
	}
	return rec.toLead(), nil
}

func (c *Client) ListAll(ctx context.Context) ([]models.Lead, error) {
	var recs []*leadRecord
	if err := c.get(ctx, url.Values{"action": {"listLeads"}}, &recs); err != nil {
		return nil, err
	}
	out := make([]models.Lead, 0, len(recs))
	for _, r := range recs {
		if l := r.toLead(); l != nil {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, u models.LeadUpdate) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(url.Values{"action": {"updateLead"}}), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var ack ackBody
	if err := c.do(req, &ack); err != nil {
		return err
	}
	if ack.Error != "" {
		return fmt.Errorf("%w: update %s: %s", ErrUnavailable, u.ID, ack.Error)
	}
	if ack.Success != nil && !*ack.Success {
		return fmt.Errorf("%w: update %s rejected", ErrUnavailable, u.ID)
	}
	return nil
}

func (c *Client) get(ctx context.Context, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(q), nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	hc := c.Client
	if hc == nil {
		hc = defaultHTTPClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %s", ErrUnavailable, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) endpoint(q url.Values) string {
	sep := "?"
	if strings.Contains(c.BaseURL, "?") {
		sep = "&"
	}
	return c.BaseURL + sep + q.Encode()
}

type leadRecord struct {
	ID       models.FlexString `json:"id"`
	Phone    models.FlexString `json:"phone"`
	Project  models.FlexString `json:"project"`
	Language models.FlexString `json:"language"`
	Status   models.FlexString `json:"status"`
	Response models.FlexString `json:"response"`

	// Set by the web app instead of a lead when the script fails.
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (r *leadRecord) failure(op string) error {
	if r == nil {
		return nil
	}
	if r.Error != "" {
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, op, r.Error)
	}
	if r.Success != nil && !*r.Success {
		return fmt.Errorf("%w: %s rejected", ErrUnavailable, op)
	}
	return nil
}

func (r *leadRecord) toLead() *models.Lead {
	if r == nil || strings.TrimSpace(string(r.ID)) == "" {
		return nil
	}
	return &models.Lead{
		ID:       strings.TrimSpace(string(r.ID)),
		Phone:    strings.TrimSpace(string(r.Phone)),
		Project:  string(r.Project),
		Language: strings.ToUpper(strings.TrimSpace(string(r.Language))),
		Status:   models.LeadStatus(strings.ToUpper(strings.TrimSpace(string(r.Status)))),
		Response: string(r.Response),
	}
}

type ackBody struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}
