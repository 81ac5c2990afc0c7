package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent or not a number.
func QueryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
