package util

import "github.com/gin-gonic/gin"

// InstanceIDKey is the gin context key holding the resolved Wix instance ID
const InstanceIDKey = "instance_id"

// GetInstanceIDFromContext extracts the Wix instance ID set by the instance middleware.
// If it is missing, it responds with 401 Unauthorized.
func GetInstanceIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(InstanceIDKey)
	if !exists {
		RespondUnauthorized(c, "missing instance context")
		return "", false
	}
	instanceID, ok := value.(string)
	if !ok || instanceID == "" {
		RespondInternalError(c, "invalid instance ID in context")
		return "", false
	}
	return instanceID, true
}

// InstanceID returns the resolved instance ID without writing a response
func InstanceID(c *gin.Context) string {
	return c.GetString(InstanceIDKey)
}
