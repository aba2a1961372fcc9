package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/service"
)

type movementRequest struct {
	ItemID        string  `json:"itemId" binding:"required"`
	ContainerID   string  `json:"containerId" binding:"required"`
	ToContainerID string  `json:"toContainerId"`
	Kind          string  `json:"kind" binding:"required,oneof=entry exit transfer"`
	Quantity      float64 `json:"quantity" binding:"required"`
	Notes         *string `json:"notes"`
}

func movementResponse(movement models.Movement) gin.H {
	return gin.H{
		"id":          movement.ID,
		"itemId":      movement.ItemID,
		"containerId": movement.ContainerID,
		"kind":        movement.Kind,
		"groupId":     movement.GroupID,
		"quantity":    movement.Quantity,
		"notes":       movement.Notes,
		"createdBy":   movement.CreatedBy,
		"createdAt":   movement.CreatedAt,
	}
}

func (h HandlerSet) RecordMovement(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Kind == string(models.MovementTransfer) && req.ToContainerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toContainerId is required for transfers"})
		return
	}

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), role, service.MovementInput{
		ItemID:        req.ItemID,
		ContainerID:   req.ContainerID,
		ToContainerID: req.ToContainerID,
		Kind:          models.MovementKind(req.Kind),
		Quantity:      req.Quantity,
		Notes:         req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, movementResponse(movement))
}

func (h HandlerSet) ListMovements(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	movements, err := h.stock.ListMovements(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(movements))
	for _, movement := range movements {
		resp = append(resp, movementResponse(movement))
	}
	c.JSON(http.StatusOK, gin.H{"movements": resp})
}

func (h HandlerSet) ListStock(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var storageID *string
	if v := c.Query("storageId"); v != "" {
		storageID = &v
	}

	limit, offset := pagination(c)
	levels, err := h.stock.ListStock(c.Request.Context(), role.CompanyID, storageID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(levels))
	for _, level := range levels {
		resp = append(resp, gin.H{
			"itemId":      level.ItemID,
			"containerId": level.ContainerID,
			"storageId":   level.StorageID,
			"quantity":    level.Quantity,
			"updatedAt":   level.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"stock": resp})
}
