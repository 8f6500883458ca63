package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nklabsmm/officeassets_backend/models"
)

func ListAssets(c *gin.Context) {
	assets, err := models.GetAssets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func GetAsset(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	asset, err := models.GetAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func GetAssetIds(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ids, err := models.GetAssetIds(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset_ids": ids})
}

func GetAvailableAssetIds(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ids, err := models.AvailableAssetIds(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset_ids": ids})
}

func CreateAsset(c *gin.Context) {
	var input models.NewAsset
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	asset, err := models.CreateAsset(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func UpdateAsset(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewAsset
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	asset, err := models.UpdateAsset(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func DeleteAsset(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	asset, err := models.DeleteAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}
