package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook receives Wix webhook deliveries
// POST /api/webhook
//
// The body is processed before responding. Processing errors are logged and
// still acknowledged with 200 so Wix does not redeliver.
func (h *Handlers) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Log.Error("Webhook handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Webhook error: %s", err.Error())})
		return
	}

	logger.Log.Debug("Webhook body received", zap.String("body", util.TruncateRunes(string(body), 200)))

	if h.webhooks == nil {
		logger.Log.Warn("Webhook received but no processor is configured")
		c.String(http.StatusOK, "OK")
		return
	}

	outcome, err := h.webhooks.HandleWebhook(c.Request.Context(), body)
	if err != nil {
		logger.Log.Error("Webhook processing error", zap.Error(err))
	} else {
		logger.Log.Debug("Webhook processed successfully", zap.String("outcome", outcome))
	}

	c.String(http.StatusOK, "OK")
}
