package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type storageRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func storageResponse(s models.Storage) gin.H {
	return gin.H{
		"id":        s.ID,
		"name":      s.Name,
		"address":   s.Address,
		"latitude":  s.Latitude,
		"longitude": s.Longitude,
		"createdAt": s.CreatedAt,
	}
}

func (h HandlerSet) ListStorages(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	storages, err := h.storages.List(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(storages))
	for _, s := range storages {
		resp = append(resp, storageResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"storages": resp})
}

func (h HandlerSet) GetStorage(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	storage, err := h.storages.GetByID(c.Request.Context(), c.Param("storageID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, storageResponse(storage))
}

func (h HandlerSet) CreateStorage(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req storageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storage := models.Storage{
		ID:        ids.New(),
		CompanyID: role.CompanyID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.storages.Create(c.Request.Context(), storage); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, storageResponse(storage))
}

func (h HandlerSet) UpdateStorage(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req storageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storage := models.Storage{
		ID:        c.Param("storageID"),
		CompanyID: role.CompanyID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.storages.Update(c.Request.Context(), storage); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteStorage(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.storages.Delete(c.Request.Context(), c.Param("storageID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
