package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/gin-gonic/gin"
)

// webhookSecretHeader carries the shared secret set on the email provider's
// webhook configuration.
const webhookSecretHeader = "X-Webhook-Secret"

type IntakeHandler struct {
	intakeService *services.IntakeService
	webhookSecret string
}

func NewIntakeHandler(intakeService *services.IntakeService, webhookSecret string) *IntakeHandler {
	return &IntakeHandler{
		intakeService: intakeService,
		webhookSecret: webhookSecret,
	}
}

// ProcessInboundEmail receives a normalized inbound email from the email
// provider webhook and runs it through the intake pipeline. The response
// body reports the processing decision so the provider's delivery log shows
// how each message was disposed of.
func (h *IntakeHandler) ProcessInboundEmail(c *gin.Context) {
	log := logger.GetLogger()

	if h.webhookSecret != "" {
		provided := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.webhookSecret)) != 1 {
			log.Warnw("Webhook secret mismatch", "clientIP", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	var email types.InboundEmail
	if err := c.ShouldBindJSON(&email); err != nil {
		log.Errorw("Invalid inbound email payload", "error", err)
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	result, err := h.intakeService.ProcessEmail(c.Request.Context(), &email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Infow("Inbound email processed",
		"messageId", email.MessageID,
		"from", logger.MaskEmail(email.From),
		"decision", result.Decision,
		"intent", result.Intent.Intent,
		"loadId", result.LoadID)
	c.JSON(http.StatusOK, result)
}
