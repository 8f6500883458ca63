package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nklabsmm/officeassets_backend/models"
)

func ListPurchases(c *gin.Context) {
	purchases, err := models.GetPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func GetPurchase(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func GetPurchaseAssetIds(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ids, err := models.GetPurchaseAssetIds(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset_ids": ids})
}

func CreatePurchase(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	purchase, err := models.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func UpdatePurchase(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	purchase, err := models.UpdatePurchase(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func DeletePurchase(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	purchase, err := models.DeletePurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
