package handlers

import (
	"net/http"

	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
)

// CheckEmail reports whether an email address or domain is disposable
// GET /api/check-email?email=...|domain=...
func (h *Handlers) CheckEmail(c *gin.Context) {
	emailOrDomain := c.Query("email")
	if emailOrDomain == "" {
		emailOrDomain = c.Query("domain")
	}
	if emailOrDomain == "" {
		util.RespondBadRequest(c, "Missing required parameter: email or domain")
		return
	}
	if h.emails == nil {
		util.RespondInternalError(c, "email checking is not configured")
		return
	}

	result := h.emails.Check(c.Request.Context(), emailOrDomain)
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, result)
}
