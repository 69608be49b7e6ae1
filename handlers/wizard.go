package handlers

import (
	"errors"
	"net/http"

	"shipflow/models"
	"shipflow/services/workflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WizardHandler exposes the booking wizard over HTTP.
type WizardHandler struct {
	Service workflow.WizardService
	Logger  *zap.Logger
}

func NewWizardHandler(svc workflow.WizardService, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{Service: svc, Logger: logger}
}

// StartSession begins a booking: the customer's service type selection
// creates the draft and parks the wizard on the package step.
func (h *WizardHandler) StartSession(c *gin.Context) {
	var input struct {
		ServiceType string `json:"serviceType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	state, err := h.Service.StartSession(c.Request.Context(), input.ServiceType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionID":   state.SessionID,
		"currentStep": state.CurrentStep(),
		"draft":       state.Draft,
	})
}

// Resume returns the persisted draft and step so an interrupted wizard
// picks up exactly where it left off.
func (h *WizardHandler) Resume(c *gin.Context) {
	state, err := h.Service.Resume(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionID":   state.SessionID,
		"currentStep": state.CurrentStep(),
		"draft":       state.Draft,
	})
}

// Advance submits the current step's local input.
func (h *WizardHandler) Advance(c *gin.Context) {
	var input workflow.StepInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	state, err := h.Service.Advance(c.Request.Context(), c.Param("sessionID"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionID":   state.SessionID,
		"currentStep": state.CurrentStep(),
		"draft":       state.Draft,
	})
}

// Retreat steps backward one step, locally only.
func (h *WizardHandler) Retreat(c *gin.Context) {
	state, err := h.Service.Retreat(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionID":   state.SessionID,
		"currentStep": state.CurrentStep(),
		"draft":       state.Draft,
	})
}

// Quote prices the draft as it stands.
func (h *WizardHandler) Quote(c *gin.Context) {
	quote, err := h.Service.Quote(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// Settle finalizes the booking through the chosen settlement channel.
func (h *WizardHandler) Settle(c *gin.Context) {
	var req models.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Service.Settle(c.Request.Context(), c.Param("sessionID"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Abandon cancels the wizard and clears its resumable state.
func (h *WizardHandler) Abandon(c *gin.Context) {
	if err := h.Service.Abandon(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session abandoned"})
}

// respondError maps the engine's error taxonomy onto HTTP statuses.
// Validation failures are user errors, never logged as system failures;
// sync and payment errors surface the service message verbatim.
func (h *WizardHandler) respondError(c *gin.Context, err error) {
	var verr *workflow.ValidationError
	var serr *workflow.SyncError
	var prerr *workflow.PricingError
	var perr *workflow.PaymentError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, workflow.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrDraftFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &prerr):
		c.JSON(http.StatusConflict, gin.H{"error": prerr.Error()})
	case errors.As(err, &perr):
		h.Logger.Warn("settlement failed", zap.Error(err))
		c.JSON(http.StatusPaymentRequired, gin.H{"error": perr.Error()})
	case errors.As(err, &serr):
		h.Logger.Error("booking service sync failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": serr.Error()})
	default:
		h.Logger.Error("wizard request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
