package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nklabsmm/officeassets_backend/models"
	"github.com/nklabsmm/officeassets_backend/workflow"
)

func ListAssetRequests(c *gin.Context) {
	if email := c.Query("user_email"); email != "" {
		requests, err := models.GetAssetRequestsByUser(c.Request.Context(), email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, requests)
		return
	}
	requests, err := models.GetAssetRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func ListPendingAssetRequests(c *gin.Context) {
	requests, err := models.GetPendingAssetRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func GetAssetRequest(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	request, err := models.GetAssetRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func CreateAssetRequest(c *gin.Context) {
	var input models.NewAssetRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	request, err := models.CreateAssetRequest(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func ApproveAssetRequest(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.ApproveAssetRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		respondBindingError(c, err)
		return
	}
	request, err := workflow.ApproveAssetRequest(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type rejectInput struct {
	Reason string `json:"reason"`
}

func RejectAssetRequest(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input rejectInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		respondBindingError(c, err)
		return
	}
	request, err := models.RejectAssetRequest(c.Request.Context(), id, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type createAndApproveInput struct {
	Request  models.NewAssetRequest            `json:"request" binding:"required"`
	Approval workflow.ApproveAssetRequestInput `json:"approval"`
}

// CreateAndApproveAssetRequest records a walk-up handover in one call.
func CreateAndApproveAssetRequest(c *gin.Context) {
	var input createAndApproveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	request, err := workflow.CreateAndApproveAssetRequest(c.Request.Context(), &input.Request, &input.Approval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func GetUserAssetDetails(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	details, err := models.GetUserAssetDetails(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
