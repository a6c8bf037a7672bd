package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cafe-queue/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" && c.Query("token") == "" {
			path = path + "?" + raw
		}

		c.Next()

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if sess := GetSession(c); sess != nil {
			entry = entry.WithField("user_id", sess.UserID)
		}
		entry.Info(path)
	}
}
