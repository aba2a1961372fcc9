package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type categoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

func categoryResponse(category models.Category) gin.H {
	return gin.H{
		"id":        category.ID,
		"name":      category.Name,
		"parentId":  category.ParentID,
		"createdAt": category.CreatedAt,
	}
}

func (h HandlerSet) ListCategories(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	categories, err := h.categories.List(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, categoryResponse(category))
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	category, err := h.categories.GetByID(c.Request.Context(), c.Param("categoryID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, categoryResponse(category))
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A parent category from another tenant must read as absent.
	if req.ParentID != nil {
		if _, err := h.categories.GetByID(c.Request.Context(), *req.ParentID, role.CompanyID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	category := models.Category{
		ID:        ids.New(),
		CompanyID: role.CompanyID,
		ParentID:  req.ParentID,
		Name:      req.Name,
	}
	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, categoryResponse(category))
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ParentID != nil {
		if _, err := h.categories.GetByID(c.Request.Context(), *req.ParentID, role.CompanyID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	category := models.Category{
		ID:        c.Param("categoryID"),
		CompanyID: role.CompanyID,
		ParentID:  req.ParentID,
		Name:      req.Name,
	}
	if err := h.categories.Update(c.Request.Context(), category); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.categories.Delete(c.Request.Context(), c.Param("categoryID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
