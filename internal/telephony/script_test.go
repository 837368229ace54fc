package telephony

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sheetcaller/backend/internal/models"
)

func testRenderer() ScriptRenderer {
	return ScriptRenderer{Brand: "Lodha Group", DefaultLanguage: "EN", GatherTimeout: 5 * time.Second}
}

func TestTemplateSelection(t *testing.T) {
	r := testRenderer()
	cases := []struct {
		language string
		want     string
	}{
		{"HI", "HI"},
		{"hi", "HI"},
		{"MR", "MR"},
		{"EN", "EN"},
		{"", "EN"},
		{"FR", "EN"},
	}
	for _, tc := range cases {
		got, _ := r.Template(tc.language)
		if got != tc.want {
			t.Fatalf("language %q: expected %s, got %s", tc.language, tc.want, got)
		}
	}
}

func TestTemplateBadDefaultFallsBackToEnglish(t *testing.T) {
	r := ScriptRenderer{DefaultLanguage: "XX"}
	if got, _ := r.Template("ZZ"); got != "EN" {
		t.Fatalf("expected EN, got %s", got)
	}
}

func TestMessageInterpolatesProjectVerbatim(t *testing.T) {
	r := testRenderer()
	msg := r.Message(models.Lead{Project: "Palava City Phase-2", Language: "HI"})
	if !strings.Contains(msg, "Palava City Phase-2") {
		t.Fatalf("project not interpolated: %s", msg)
	}
	if !strings.HasPrefix(msg, "Namaste!") {
		t.Fatalf("expected Hindi template, got %s", msg)
	}
}

func TestRenderGather(t *testing.T) {
	r := testRenderer()
	xml, err := r.Render(models.Lead{ID: "42", Project: "World Towers", Language: "EN"}, "https://caller.example.com/handle-input?cid=42")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lower := strings.ToLower(xml)
	for _, want := range []string{"<response>", "<gather", `numdigits="1"`, `timeout="5"`, `method="post"`, "handle-input?cid=42", "world towers"} {
		if !strings.Contains(lower, want) {
			t.Fatalf("expected %q in %s", want, xml)
		}
	}
	if !strings.Contains(xml, NoInputLine) {
		t.Fatalf("expected closing line in %s", xml)
	}
	if strings.Index(xml, NoInputLine) < strings.Index(lower, "</gather>") {
		t.Fatalf("closing line must follow the gather: %s", xml)
	}
}

func TestRenderAck(t *testing.T) {
	cases := map[string]string{
		models.ResponseInterested:    "Our team will contact you soon",
		models.ResponseNotInterested: "Thank you for your time",
		models.ResponseNoInput:       "Thank you. Goodbye.",
	}
	for response, want := range cases {
		xml, err := RenderAck(response)
		if err != nil {
			t.Fatalf("render ack: %v", err)
		}
		if !strings.Contains(xml, want) {
			t.Fatalf("%s: expected %q in %s", response, want, xml)
		}
	}
}

func TestMockDialer(t *testing.T) {
	req := CallRequest{To: "+919800000001", ScriptURL: "https://x/call-script?customer_id=1"}
	sid, err := MockDialer{}.PlaceCall(context.Background(), req)
	if err != nil || !strings.HasPrefix(sid, "CA") {
		t.Fatalf("unexpected sid %q err %v", sid, err)
	}
	boom := errors.New("boom")
	if _, err := (MockDialer{Err: boom}).PlaceCall(context.Background(), req); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
}
