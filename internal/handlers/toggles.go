package handlers

import (
	"net/http"

	apperrors "github.com/certifiedcode/memberguard/internal/errors"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/toggles"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type toggleRequest struct {
	IsEnabled interface{} `json:"isEnabled"`
}

func (h *Handlers) resolveFeature(c *gin.Context) (toggles.Feature, bool) {
	feature, err := toggles.ParseFeature(c.Query("feature"))
	if err != nil {
		util.RespondWithAPIError(c, apperrors.BadRequestField("feature", "unknown feature: "+c.Query("feature")))
		return "", false
	}
	return feature, true
}

// GetToggleState reports whether a feature is enabled for the site
// GET /api/toggle-state?feature=gravatar|fake-email-block|message-moderation
func (h *Handlers) GetToggleState(c *gin.Context) {
	instanceID, ok := util.GetInstanceIDFromContext(c)
	if !ok {
		return
	}
	feature, ok := h.resolveFeature(c)
	if !ok {
		return
	}

	enabled, err := h.toggles.Enabled(c.Request.Context(), feature, instanceID)
	if err != nil {
		logger.Log.Error("Failed to read toggle", logger.WithInstanceID(instanceID), zap.Error(err))
		util.RespondInternalError(c, "Failed to read toggle state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"isEnabled": enabled})
}

// SetToggleState enables or disables a feature for the site
// POST /api/toggle-state?feature=... {"isEnabled": true}
func (h *Handlers) SetToggleState(c *gin.Context) {
	instanceID, ok := util.GetInstanceIDFromContext(c)
	if !ok {
		return
	}
	feature, ok := h.resolveFeature(c)
	if !ok {
		return
	}

	// an unreadable body is treated like a missing field
	var req toggleRequest
	_ = c.ShouldBindJSON(&req)

	enabled, isBool := req.IsEnabled.(bool)
	if !isBool {
		util.RespondWithAPIError(c, apperrors.BadRequestField("isEnabled", "isEnabled must be a boolean"))
		return
	}

	if err := h.toggles.Set(c.Request.Context(), feature, instanceID, enabled); err != nil {
		logger.Log.Error("Failed to write toggle", logger.WithInstanceID(instanceID), zap.Error(err))
		util.RespondInternalError(c, "Failed to save toggle state")
		return
	}

	logger.Log.Info("Toggle updated",
		logger.WithInstanceID(instanceID),
		zap.String("feature", string(feature)),
		zap.Bool("enabled", enabled),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "isEnabled": enabled})
}
