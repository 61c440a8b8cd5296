package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	service "github.com/mamadbah2/sitestock/internal/service/whatsapp"
)

// WebhookHandler handles the WhatsApp command channel.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify echoes hub.challenge when the subscription token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, resp)
}

// Receive ingests webhook callbacks carrying stock commands. Once the body
// parses the callback is acknowledged, whatever happened to its messages.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	stats := h.svc.HandleWebhook(c.Request.Context(), payload)
	fields := []zap.Field{
		zap.String("object", payload.Object),
		zap.Int("dispatched", stats.Dispatched),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("ignored", stats.Ignored),
		zap.Int("reply_failures", stats.ReplyFailures),
	}
	if stats.ReplyFailures > 0 {
		h.logger.Warn("webhook processed with undelivered replies", fields...)
	} else {
		h.logger.Debug("webhook processed", fields...)
	}

	c.Status(http.StatusOK)
}

// SendMessage pushes an operator message to a site contact.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("failed sending operator message", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}
