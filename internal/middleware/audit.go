package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-feedback-api/pkg/middleware/requestid"
)

// Audit logs one structured line per successful state-changing request in
// the group it is attached to. Reads are not recorded.
func Audit(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Request.Method == http.MethodGet || c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", c.Request.Method+" "+c.FullPath()),
			zap.String("resource_id", c.Param("subjectId")),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.String("request_id", requestid.Value(c)),
		}
		if claims := CurrentUser(c); claims != nil {
			fields = append(fields, zap.String("actor_id", claims.UserID))
		}
		logger.Info("admin_change", fields...)
	}
}
