package middleware

import (
	"context"
	"strings"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MissingInstanceMessage is returned when no site can be resolved for a dashboard call
const MissingInstanceMessage = "Missing required instance context: provide Authorization header or instance query param"

// InstanceResolver turns a dashboard token into a Wix instance ID
type InstanceResolver interface {
	ResolveInstance(ctx context.Context, token string) (string, error)
}

// InstanceMiddleware resolves the calling site from the instance query
// parameter or the Authorization header and stores its ID on the context.
func InstanceMiddleware(resolver InstanceResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("instance"))
		if token == "" {
			token = strings.TrimSpace(c.GetHeader("Authorization"))
		}
		if token == "" {
			util.RespondUnauthorized(c, MissingInstanceMessage)
			return
		}

		instanceID, err := resolver.ResolveInstance(c.Request.Context(), token)
		if err != nil || instanceID == "" {
			logger.Log.Warn("Instance resolution failed",
				logger.WithRequestID(GetRequestID(c)),
				zap.Error(err),
			)
			util.RespondUnauthorized(c, MissingInstanceMessage)
			return
		}

		c.Set(util.InstanceIDKey, instanceID)
		c.Next()
	}
}
