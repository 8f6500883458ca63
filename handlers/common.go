package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nklabsmm/officeassets_backend/config"
	"github.com/nklabsmm/officeassets_backend/utils"
	"github.com/sirupsen/logrus"
)

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps core errors onto HTTP statuses. Consistency faults are
// logged with the correlation id before the 500 goes out; they must never
// leave the process silently.
func respondError(c *gin.Context, err error) {
	if utils.IsConsistencyError(err) {
		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.GetLogger().WithFields(logrus.Fields{
			"module":        "handlers",
			"path":          c.FullPath(),
			"correlationId": correlationId,
		}).Error(err.Error())
	}
	c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
}

func respondBindingError(c *gin.Context, err error) {
	if _, ok := err.(validator.ValidationErrors); ok {
		c.JSON(400, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(400, gin.H{"error": err.Error()})
}
