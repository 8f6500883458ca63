package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nklabsmm/officeassets_backend/utils"
)

// RequestContextMiddleware stamps every request with a correlation id and
// lifts the gateway-provided actor headers into the request context. The
// gateway authenticates; this service only needs to know who is acting.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		c.Header("X-Correlation-Id", correlationId)

		ctx := c.Request.Context()
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		if email := c.Request.Header.Get("X-User-Email"); email != "" {
			ctx = utils.SetUserEmailInContext(ctx, email)
		}
		if name := c.Request.Header.Get("X-User-Name"); name != "" {
			ctx = utils.SetUserNameInContext(ctx, name)
		}
		if c.Request.Header.Get("X-User-Admin") == "true" {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminOnly guards approval and intake endpoints.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context())
		if !ok || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
