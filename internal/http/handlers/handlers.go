package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sheetcaller/backend/internal/http/middleware"
	"github.com/sheetcaller/backend/internal/models"
	"github.com/sheetcaller/backend/internal/service"
)

// CallLog is the read side of the call journal. It is nil when no database is configured.
type CallLog interface {
	Ping(ctx context.Context) error
	ListCallEvents(ctx context.Context, leadID string, limit int) ([]models.CallEvent, error)
}

type Handler struct {
	Orchestrator *service.Orchestrator
	Reconciler   *service.Reconciler
	CallLog      CallLog
	Validator    *validator.Validate
	Logger       zerolog.Logger
}

type InitiateCallRequest struct {
	CustomerID models.FlexString `json:"customer_id" form:"customer_id" validate:"required"`
	Phone      models.FlexString `json:"phone" form:"phone" validate:"required"`
}

type InitiateCallResponse struct {
	Success    bool   `json:"success"`
	CallSID    string `json:"call_sid"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
}

type SaveResponseRequest struct {
	CustomerID models.FlexString `json:"customer_id" form:"customer_id" validate:"required"`
	Response   string            `json:"response" form:"response"`
}

type NextCustomerResponse struct {
	Phone      *string `json:"phone"`
	CustomerID string  `json:"customer_id,omitempty"`
	Project    string  `json:"project,omitempty"`
	Language   string  `json:"language,omitempty"`
	ScriptURL  string  `json:"script_url,omitempty"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz also checks the call journal when one is configured.
func (h *Handler) Readyz(c *gin.Context) {
	if h.CallLog != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.CallLog.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Place an outbound call
// @Tags calls
// @Accept json
// @Produce json
// @Param body body InitiateCallRequest true "lead to call"
// @Success 200 {object} InitiateCallResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /initiate-call [post]
func (h *Handler) InitiateCall(c *gin.Context) {
	var req InitiateCallRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "customer_id and phone required", err.Error())
		return
	}

	placed, err := h.Orchestrator.PlaceCall(c.Request.Context(), req.CustomerID.String(), req.Phone.String())
	if err != nil {
		h.fail(c, "initiate_call", req.CustomerID.String(), err)
		return
	}
	c.JSON(http.StatusOK, InitiateCallResponse{
		Success:    true,
		CallSID:    placed.CallSID,
		CustomerID: placed.LeadID,
		Status:     "initiated",
	})
}

// @Summary Next lead to call
// @Tags leads
// @Produce json
// @Success 200 {object} NextCustomerResponse
// @Failure 500 {object} map[string]any
// @Router /get-next-customer [get]
func (h *Handler) GetNextCustomer(c *gin.Context) {
	lead, err := h.Orchestrator.NextLead(c.Request.Context())
	if err != nil {
		h.fail(c, "get_next_customer", "", err)
		return
	}
	if lead == nil {
		c.JSON(http.StatusOK, NextCustomerResponse{})
		return
	}
	phone := lead.Phone
	c.JSON(http.StatusOK, NextCustomerResponse{
		Phone:      &phone,
		CustomerID: lead.ID,
		Project:    lead.Project,
		Language:   lead.Language,
		ScriptURL:  "/call-script?" + url.Values{"customer_id": {lead.ID}}.Encode(),
	})
}

// @Summary Record a response manually
// @Tags leads
// @Accept json
// @Produce json
// @Param body body SaveResponseRequest true "response"
// @Success 200 {object} map[string]any
// @Router /save-response [post]
func (h *Handler) SaveResponse(c *gin.Context) {
	var req SaveResponseRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "customer_id required", err.Error())
		return
	}
	if err := h.Reconciler.SaveResponse(c.Request.Context(), req.CustomerID.String(), req.Response); err != nil {
		h.fail(c, "save_response", req.CustomerID.String(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// @Summary List leads
// @Tags leads
// @Produce json
// @Success 200 {array} models.Lead
// @Router /leads [get]
func (h *Handler) Leads(c *gin.Context) {
	leads, err := h.Orchestrator.ListLeads(c.Request.Context())
	if err != nil {
		h.fail(c, "list_leads", "", err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary Call journal
// @Tags calls
// @Produce json
// @Param customer_id query string false "Lead ID"
// @Param limit query int false "Max events"
// @Success 200 {array} models.CallEvent
// @Router /calls [get]
func (h *Handler) Calls(c *gin.Context) {
	if h.CallLog == nil {
		writeError(c, http.StatusServiceUnavailable, "JOURNAL_DISABLED", "Call journal not configured", nil)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.CallLog.ListCallEvents(c.Request.Context(), strings.TrimSpace(c.Query("customer_id")), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load calls", err.Error())
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) fail(c *gin.Context, op, leadID string, err error) {
	status, code := classify(err)
	evt := h.Logger.Warn()
	if status >= 500 {
		evt = h.Logger.Error()
	}
	evt.Err(err).
		Str("op", op).
		Str("lead_id", leadID).
		Str("request_id", c.GetString(middleware.RequestIDHeader)).
		Msg("request failed")
	writeError(c, status, code, errorMessage(code), err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusInternalServerError, "STORE_UNAVAILABLE"
	case errors.Is(err, service.ErrCallPlacementFailed):
		return http.StatusInternalServerError, "CALL_PLACEMENT_FAILED"
	case errors.Is(err, service.ErrProviderCallback):
		return http.StatusInternalServerError, "PROVIDER_CALLBACK_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func errorMessage(code string) string {
	switch code {
	case "INVALID_REQUEST":
		return "Invalid request"
	case "NOT_FOUND":
		return "Customer not found"
	case "STORE_UNAVAILABLE":
		return "Lead store unavailable"
	case "CALL_PLACEMENT_FAILED":
		return "Failed to place call"
	case "PROVIDER_CALLBACK_ERROR":
		return "Malformed provider callback"
	default:
		return "Internal error"
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
