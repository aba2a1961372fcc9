package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type containerRequest struct {
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`
}

func containerResponse(container models.Container) gin.H {
	return gin.H{
		"id":          container.ID,
		"storageId":   container.StorageID,
		"code":        container.Code,
		"description": container.Description,
		"createdAt":   container.CreatedAt,
	}
}

func (h HandlerSet) ListContainers(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	containers, err := h.containers.ListByStorage(c.Request.Context(), c.Param("storageID"), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(containers))
	for _, container := range containers {
		resp = append(resp, containerResponse(container))
	}
	c.JSON(http.StatusOK, gin.H{"containers": resp})
}

func (h HandlerSet) GetContainer(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	container, err := h.containers.GetByID(c.Request.Context(), c.Param("containerID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, containerResponse(container))
}

// GetContainerLabel streams the container's QR label PNG, generating it on
// first request.
func (h HandlerSet) GetContainerLabel(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	png, err := h.labelService.GetLabel(c.Request.Context(), c.Param("containerID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h HandlerSet) CreateContainer(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	container := models.Container{
		ID:          ids.New(),
		StorageID:   c.Param("storageID"),
		Code:        req.Code,
		Description: req.Description,
	}
	if err := h.containers.Create(c.Request.Context(), container, role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, containerResponse(container))
}

func (h HandlerSet) UpdateContainer(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	container := models.Container{
		ID:          c.Param("containerID"),
		Code:        req.Code,
		Description: req.Description,
	}
	if err := h.containers.Update(c.Request.Context(), container, role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteContainer(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.containers.Delete(c.Request.Context(), c.Param("containerID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
