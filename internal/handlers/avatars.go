package handlers

import (
	"net/http"

	"github.com/certifiedcode/memberguard/internal/avatars"
	apperrors "github.com/certifiedcode/memberguard/internal/errors"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
)

type bulkAvatarRequest struct {
	MemberIDs []string `json:"memberIds"`
}

// BulkUpdateAvatars applies Gravatar photos to the given members
// POST /api/bulk-update-avatars {"memberIds": ["..."]}
func (h *Handlers) BulkUpdateAvatars(c *gin.Context) {
	instanceID, ok := util.GetInstanceIDFromContext(c)
	if !ok {
		return
	}

	var req bulkAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MemberIDs) == 0 {
		util.RespondWithAPIError(c, apperrors.BadRequestField("memberIds", "memberIds must be a non-empty array"))
		return
	}

	updater := avatars.NewUpdater(h.platform.ForInstance(instanceID), instanceID, h.activityLog())
	c.JSON(http.StatusOK, updater.BulkUpdate(c.Request.Context(), req.MemberIDs))
}

// activityLog avoids handing a typed nil interface to the updater
func (h *Handlers) activityLog() avatars.ActivityLog {
	if h.activity == nil {
		return nil
	}
	return h.activity
}
