package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sheetcaller/backend/internal/http/middleware"
	"github.com/sheetcaller/backend/internal/service"
	"github.com/sheetcaller/backend/internal/telephony"
)

// Provider-facing endpoints. Responses are TwiML or an empty 200; errors are
// plain text so the provider logs stay readable.

// @Summary Voice menu for a lead
// @Tags voice
// @Produce xml
// @Param customer_id query string true "Lead ID"
// @Success 200 {string} string
// @Router /call-script [get]
func (h *Handler) CallScript(c *gin.Context) {
	leadID := c.Query("customer_id")
	xml, err := h.Orchestrator.RenderScript(c.Request.Context(), leadID)
	if err != nil {
		h.failVoice(c, "call_script", leadID, "", err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(xml))
}

// @Summary Provider call status callback
// @Tags voice
// @Accept x-www-form-urlencoded
// @Param customer_id query string true "Lead ID"
// @Param CallStatus formData string true "Provider call status"
// @Success 200
// @Router /call-status [post]
func (h *Handler) CallStatus(c *gin.Context) {
	leadID := strings.TrimSpace(c.Query("customer_id"))
	callSID := c.PostForm("CallSid")
	if leadID == "" {
		h.failVoice(c, "call_status", leadID, callSID, service.ErrInvalidRequest)
		return
	}

	raw := c.PostForm("CallStatus")
	kind, err := service.ParseCallStatus(raw)
	if err != nil {
		h.failVoice(c, "call_status", leadID, callSID, err)
		return
	}
	duration, _ := strconv.Atoi(c.PostForm("CallDuration"))

	_, err = h.Reconciler.Apply(c.Request.Context(), service.Event{
		Kind:      kind,
		LeadID:    leadID,
		CallSID:   callSID,
		RawStatus: raw,
		Duration:  duration,
	})
	if err != nil {
		h.failVoice(c, "call_status", leadID, callSID, err)
		return
	}
	c.Status(http.StatusOK)
}

// @Summary Keypad or speech input from the voice menu
// @Tags voice
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param cid query string true "Lead ID"
// @Param Digits formData string false "Pressed key"
// @Param SpeechResult formData string false "Recognized speech"
// @Success 200 {string} string
// @Router /handle-input [post]
func (h *Handler) HandleInput(c *gin.Context) {
	leadID := strings.TrimSpace(c.Query("cid"))
	callSID := c.PostForm("CallSid")
	if leadID == "" {
		h.failVoice(c, "handle_input", leadID, callSID, service.ErrInvalidRequest)
		return
	}

	res, err := h.Reconciler.Apply(c.Request.Context(), service.Event{
		Kind:    service.EventUserInput,
		LeadID:  leadID,
		CallSID: callSID,
		Digits:  c.PostForm("Digits"),
		Speech:  c.PostForm("SpeechResult"),
	})
	if err != nil {
		h.failVoice(c, "handle_input", leadID, callSID, err)
		return
	}

	xml, err := telephony.RenderAck(res.Response)
	if err != nil {
		h.failVoice(c, "handle_input", leadID, callSID, err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(xml))
}

func (h *Handler) failVoice(c *gin.Context, op, leadID, callSID string, err error) {
	status, _ := classify(err)
	evt := h.Logger.Warn()
	if status >= 500 {
		evt = h.Logger.Error()
	}
	evt.Err(err).
		Str("op", op).
		Str("lead_id", leadID).
		Str("call_sid", callSID).
		Str("request_id", c.GetString(middleware.RequestIDHeader)).
		Msg("voice request failed")

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		c.String(status, "customer_id required")
	case errors.Is(err, service.ErrNotFound):
		c.String(status, "customer not found")
	default:
		c.String(status, "error")
	}
}
