package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type attributeRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h HandlerSet) ListAttributes(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	attributes, err := h.attributes.List(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(attributes))
	for _, attribute := range attributes {
		resp = append(resp, gin.H{"id": attribute.ID, "name": attribute.Name})
	}
	c.JSON(http.StatusOK, gin.H{"attributes": resp})
}

func (h HandlerSet) CreateAttribute(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req attributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attribute := models.Attribute{
		ID:        ids.New(),
		CompanyID: role.CompanyID,
		Name:      req.Name,
	}
	if err := h.attributes.Create(c.Request.Context(), attribute); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": attribute.ID, "name": attribute.Name})
}

func (h HandlerSet) UpdateAttribute(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req attributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attribute := models.Attribute{
		ID:        c.Param("attributeID"),
		CompanyID: role.CompanyID,
		Name:      req.Name,
	}
	if err := h.attributes.Update(c.Request.Context(), attribute); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteAttribute(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.attributes.Delete(c.Request.Context(), c.Param("attributeID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
