package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sheetcaller/backend/internal/config"
	"github.com/sheetcaller/backend/internal/models"
	"github.com/sheetcaller/backend/internal/telephony"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticStore struct {
	lead models.Lead
}

func (s staticStore) FetchNext(ctx context.Context) (*models.Lead, error) { return &s.lead, nil }

func (s staticStore) FetchByID(ctx context.Context, id string) (*models.Lead, error) {
	if id != s.lead.ID {
		return nil, nil
	}
	return &s.lead, nil
}

func (s staticStore) Update(ctx context.Context, u models.LeadUpdate) error { return nil }

func (s staticStore) ListAll(ctx context.Context) ([]models.Lead, error) {
	return []models.Lead{s.lead}, nil
}

func testConfig() config.Config {
	return config.Config{
		BaseURL:         "https://caller.example.com",
		CORSAllowed:     "*",
		AdminKey:        "k",
		RingTimeout:     30 * time.Second,
		GatherTimeout:   5 * time.Second,
		DefaultLanguage: "EN",
		CompanyName:     "Lodha Group",
		TwilioAuthToken: "secret",
	}
}

func TestRouterServesEndpoints(t *testing.T) {
	deps := Deps{
		Store:  staticStore{lead: models.Lead{ID: "42", Phone: "+1", Status: models.StatusPending}},
		Dialer: telephony.MockDialer{},
	}
	r := Router(testConfig(), deps, zerolog.Nop())

	for _, path := range []string{"/health", "/readyz", "/leads", "/get-next-customer", "/call-script?customer_id=42"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if w.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing request id", path)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calls", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected admin key to guard /calls, got %d", w.Code)
	}
}

func TestRouterSignatureGuard(t *testing.T) {
	cfg := testConfig()
	cfg.ValidateSig = true
	deps := Deps{
		Store:  staticStore{lead: models.Lead{ID: "42", Status: models.StatusInProgress}},
		Dialer: telephony.MockDialer{},
	}
	r := Router(cfg, deps, zerolog.Nop())

	form := url.Values{"CallStatus": {"completed"}}
	req := httptest.NewRequest(http.MethodPost, "/call-status?customer_id=42", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected unsigned callback to be rejected, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected health to stay open, got %d", w.Code)
	}
}

func TestAllowedOrigins(t *testing.T) {
	got := allowedOrigins("https://a.com, https://b.com ,,")
	if len(got) != 2 || got[0] != "https://a.com" || got[1] != "https://b.com" {
		t.Fatalf("unexpected origins %q", got)
	}
	if allowedOrigins("*") != nil || allowedOrigins(" ") != nil {
		t.Fatalf("expected wildcard and blank to allow any origin")
	}
}

func TestRouterCORSTrimsOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.CORSAllowed = "https://a.com, https://b.com"
	deps := Deps{Store: staticStore{}, Dialer: telephony.MockDialer{}}
	r := Router(cfg, deps, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://b.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "https://b.com" {
		t.Fatalf("expected second origin to be allowed, got %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}
