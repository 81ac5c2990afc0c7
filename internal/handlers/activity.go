package handlers

import (
	"net/http"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/models"
	"github.com/certifiedcode/memberguard/internal/repository"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetActivity lists recent avatars set, members blocked and messages flagged
// GET /api/activity?limit=50
func (h *Handlers) GetActivity(c *gin.Context) {
	instanceID, ok := util.GetInstanceIDFromContext(c)
	if !ok {
		return
	}
	if h.activity == nil {
		c.JSON(http.StatusOK, gin.H{"activity": []models.Activity{}})
		return
	}

	limit := repository.ClampActivityLimit(util.QueryInt(c, "limit", repository.DefaultActivityLimit))
	entries, err := h.activity.Recent(c.Request.Context(), instanceID, limit)
	if err != nil {
		logger.Log.Error("Failed to load activity", logger.WithInstanceID(instanceID), zap.Error(err))
		util.RespondInternalError(c, "Failed to load activity")
		return
	}
	if entries == nil {
		entries = []models.Activity{}
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
