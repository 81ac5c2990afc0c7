package handlers

import (
	"net/http"

	apperrors "github.com/certifiedcode/memberguard/internal/errors"
	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/certifiedcode/memberguard/internal/wix"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MemberSummary is one row of the dashboard member table
type MemberSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HasAvatar bool   `json:"hasAvatar"`
	AvatarURL string `json:"avatarUrl"`
}

func summarize(m wix.Member) MemberSummary {
	avatar := ""
	if m.Profile.Photo != nil {
		avatar = m.Profile.Photo.URL
	}
	return MemberSummary{
		ID:        m.ID,
		Name:      m.DisplayName(),
		Email:     m.Email(),
		HasAvatar: m.HasPhoto(),
		AvatarURL: avatar,
	}
}

// ListMembers returns every site member for the dashboard
// GET /api/members
func (h *Handlers) ListMembers(c *gin.Context) {
	instanceID, ok := util.GetInstanceIDFromContext(c)
	if !ok {
		return
	}

	members, err := h.platform.ForInstance(instanceID).ListAllMembers(c.Request.Context())
	if err != nil {
		logger.Log.Error("Error fetching members", logger.WithInstanceID(instanceID), zap.Error(err))
		util.RespondWithAPIError(c, apperrors.Upstream("wix", err))
		return
	}

	out := make([]MemberSummary, 0, len(members))
	for _, m := range members {
		out = append(out, summarize(m))
	}

	logger.Log.Info("Fetched members", logger.WithInstanceID(instanceID), zap.Int("count", len(out)))
	c.JSON(http.StatusOK, gin.H{"members": out})
}
