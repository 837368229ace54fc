package telephony

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/twilio/twilio-go/twiml"

	"github.com/sheetcaller/backend/internal/models"
)

const (
	FallbackLanguage = "EN"
	NoInputLine      = "We did not receive any input. Thank you for your time. Goodbye."
)

// Template is one locale of the outreach prompt. Message takes the brand and the project.
type Template struct {
	Message       string
	Voice         string
	VoiceLanguage string
}

var templates = map[string]Template{
	"EN": {
		Message:       "Hello! This is %s calling regarding your inquiry for %s. Press 1 if you are interested, or press 2 if you are not interested.",
		Voice:         "Polly.Aditi",
		VoiceLanguage: "en-IN",
	},
	"HI": {
		Message:       "Namaste! %s aapko %s ke baare mein call kar raha hai. Agar interested hain toh 1 press karein, nahin interested hain toh 2 press karein.",
		Voice:         "Polly.Aditi",
		VoiceLanguage: "hi-IN",
	},
	"MR": {
		Message:       "Namaskar! %s tumhala %s baabat call karat ahe. Interest asel tar 1 press kara, nasel tar 2 press kara.",
		Voice:         "Polly.Aditi",
		VoiceLanguage: "hi-IN",
	},
}

var acknowledgements = map[string]string{
	models.ResponseInterested:    "Thank you for your interest! Our team will contact you soon. Goodbye.",
	models.ResponseNotInterested: "Thank you for your time. Goodbye.",
}

type ScriptRenderer struct {
	Brand           string
	DefaultLanguage string
	GatherTimeout   time.Duration
}

// Template resolves the locale for a lead language, falling back to the default
// locale and then to English.
func (r ScriptRenderer) Template(language string) (string, Template) {
	lang := strings.ToUpper(strings.TrimSpace(language))
	if t, ok := templates[lang]; ok {
		return lang, t
	}
	def := strings.ToUpper(strings.TrimSpace(r.DefaultLanguage))
	if t, ok := templates[def]; ok {
		return def, t
	}
	return FallbackLanguage, templates[FallbackLanguage]
}

// Message is the spoken prompt for a lead with the project interpolated verbatim.
func (r ScriptRenderer) Message(lead models.Lead) string {
	_, t := r.Template(lead.Language)
	return fmt.Sprintf(t.Message, r.Brand, lead.Project)
}

// Render builds the voice menu: a one digit gather (keypad or speech) posting to
// actionURL, followed by the closing line spoken when the gather times out.
func (r ScriptRenderer) Render(lead models.Lead, actionURL string) (string, error) {
	_, t := r.Template(lead.Language)
	timeout := int(r.GatherTimeout / time.Second)
	if timeout <= 0 {
		timeout = 5
	}

	prompt := &twiml.VoiceSay{
		Message:  r.Message(lead),
		Voice:    t.Voice,
		Language: t.VoiceLanguage,
	}
	gather := &twiml.VoiceGather{
		Input:         "dtmf speech",
		NumDigits:     "1",
		Timeout:       strconv.Itoa(timeout),
		Action:        actionURL,
		Method:        "POST",
		Language:      t.VoiceLanguage,
		InnerElements: []twiml.Element{prompt},
	}
	closing := &twiml.VoiceSay{Message: NoInputLine}
	return twiml.Voice([]twiml.Element{gather, closing})
}

// RenderAck speaks the goodbye line matching the recorded response.
func RenderAck(response string) (string, error) {
	line, ok := acknowledgements[response]
	if !ok {
		line = "Thank you. Goodbye."
	}
	return twiml.Voice([]twiml.Element{&twiml.VoiceSay{Message: line}})
}
