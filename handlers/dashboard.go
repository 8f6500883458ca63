package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/workflow"
)

func GetDashboardStats(c *gin.Context) {
	stats, err := models.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func GetInventorySummary(c *gin.Context) {
	rows, err := models.GetInventorySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func ExportInventorySummary(c *gin.Context) {
	buf, err := models.ExportInventorySummaryXlsx(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func RunReconciliation(c *gin.Context) {
	summary, err := models.RunReconciliationChecks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func ListOpenReconciliationFindings(c *gin.Context) {
	findings, err := models.GetOpenReconciliationFindings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, findings)
}

func RebuildAssetLedger(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	asset, err := workflow.RebuildAssetLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}
