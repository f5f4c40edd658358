package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/logger"
	"github.com/soumyacodes007/social-media-backend/internal/util"
)

// RequireDatabase resolves the database before the handler runs and answers
// 503 when no connection can be made within timeout.
func RequireDatabase(provider database.Provider, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if _, err := provider.Get(ctx); err != nil {
			logger.WarnWithFields("Database unavailable for request", err,
				logger.WithRequestID(c.GetString("request_id")))
			util.RespondServiceUnavailable(c, util.DatabaseUnavailableMessage)
			return
		}
		c.Next()
	}
}
