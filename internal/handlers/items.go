package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type itemRequest struct {
	Name        string  `json:"name" binding:"required"`
	SKU         string  `json:"sku" binding:"required"`
	CategoryID  *string `json:"categoryId"`
	Description *string `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
}

type attributeValueRequest struct {
	AttributeID string `json:"attributeId" binding:"required"`
	Value       string `json:"value" binding:"required"`
}

func itemResponse(item models.Item) gin.H {
	return gin.H{
		"id":          item.ID,
		"name":        item.Name,
		"sku":         item.SKU,
		"categoryId":  item.CategoryID,
		"description": item.Description,
		"unitPrice":   item.UnitPrice,
		"createdAt":   item.CreatedAt,
	}
}

func (h HandlerSet) ListItems(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var categoryID *string
	if v := c.Query("categoryId"); v != "" {
		categoryID = &v
	}

	limit, offset := pagination(c)
	items, err := h.items.List(c.Request.Context(), role.CompanyID, categoryID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

func (h HandlerSet) GetItem(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	item, err := h.items.GetByID(c.Request.Context(), c.Param("itemID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	values, err := h.items.ListAttributeValues(c.Request.Context(), item.ID, role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	attrs := make([]gin.H, 0, len(values))
	for _, v := range values {
		attrs = append(attrs, gin.H{"attributeId": v.AttributeID, "value": v.Value})
	}

	resp := itemResponse(item)
	resp["attributes"] = attrs
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) CreateItem(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.CategoryID != nil {
		if _, err := h.categories.GetByID(c.Request.Context(), *req.CategoryID, role.CompanyID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	item := models.Item{
		ID:          ids.New(),
		CompanyID:   role.CompanyID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
	}
	if err := h.items.Create(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, itemResponse(item))
}

func (h HandlerSet) UpdateItem(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.CategoryID != nil {
		if _, err := h.categories.GetByID(c.Request.Context(), *req.CategoryID, role.CompanyID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	item := models.Item{
		ID:          c.Param("itemID"),
		CompanyID:   role.CompanyID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
	}
	if err := h.items.Update(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteItem(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.items.Delete(c.Request.Context(), c.Param("itemID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetItemAttributes replaces the item's attribute values wholesale.
func (h HandlerSet) SetItemAttributes(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Attributes []attributeValueRequest `json:"attributes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemID := c.Param("itemID")
	values := make([]models.AttributeValue, 0, len(req.Attributes))
	for _, a := range req.Attributes {
		values = append(values, models.AttributeValue{
			ID:          ids.New(),
			ItemID:      itemID,
			AttributeID: a.AttributeID,
			Value:       a.Value,
		})
	}

	if err := h.tx.ReplaceItemAttributes(c.Request.Context(), itemID, role.CompanyID, values); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
