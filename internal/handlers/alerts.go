package handlers

import (
	"net/http"

	apperrors "github.com/certifiedcode/memberguard/internal/errors"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type alertRequest struct {
	MemberEmail string `json:"memberEmail"`
	AdminEmail  string `json:"adminEmail"`
}

// SendFakeMemberAlert sends a fake member alert by hand, for testing templates
// POST /api/sendpulse-email {"memberEmail": "...", "adminEmail": "..."}
func (h *Handlers) SendFakeMemberAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid JSON body")
		return
	}
	if req.MemberEmail == "" {
		util.RespondWithAPIError(c, apperrors.BadRequestField("memberEmail", "memberEmail is required"))
		return
	}

	sent, err := h.alerts.SendFakeMemberAlert(c.Request.Context(), req.MemberEmail, req.AdminEmail)
	if err != nil {
		logger.Log.Warn("Manual alert failed", zap.Error(err))
	}

	success := sent && err == nil
	status := http.StatusOK
	message := "Email sent successfully"
	if !success {
		status = http.StatusInternalServerError
		message = "Failed to send email"
	}
	c.JSON(status, gin.H{"success": success, "message": message})
}
