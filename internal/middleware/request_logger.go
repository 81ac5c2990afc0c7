package middleware

import (
	"net/http"
	"time"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/certifiedcode/memberguard/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger writes one structured line per request in place of gin.Logger.
// Successful requests to quiet paths (probes, scrapes) are not logged.
func RequestLogger(quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[path]; ok && status < http.StatusBadRequest {
			return
		}

		ce := logger.Log.Check(levelForStatus(status), "HTTP request")
		if ce == nil {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			logger.WithStatus(status),
			logger.WithDuration(time.Since(start)),
			logger.WithIP(c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if id := GetRequestID(c); id != "" {
			fields = append(fields, logger.WithRequestID(id))
		}
		if id := util.InstanceID(c); id != "" {
			fields = append(fields, logger.WithInstanceID(id))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, zap.Strings("errors", errs.Errors()))
		}
		ce.Write(fields...)
	}
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
