package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/ids"
	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
)

type providerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
}

func providerResponse(provider models.Provider) gin.H {
	return gin.H{
		"id":        provider.ID,
		"name":      provider.Name,
		"email":     provider.Email,
		"phone":     provider.Phone,
		"createdAt": provider.CreatedAt,
	}
}

func (h HandlerSet) ListProviders(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	providers, err := h.providers.List(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(providers))
	for _, provider := range providers {
		resp = append(resp, providerResponse(provider))
	}
	c.JSON(http.StatusOK, gin.H{"providers": resp})
}

func (h HandlerSet) GetProvider(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	provider, err := h.providers.GetByID(c.Request.Context(), c.Param("providerID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, providerResponse(provider))
}

func (h HandlerSet) CreateProvider(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := models.Provider{
		ID:        ids.New(),
		CompanyID: role.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := h.providers.Create(c.Request.Context(), provider); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, providerResponse(provider))
}

func (h HandlerSet) UpdateProvider(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := models.Provider{
		ID:        c.Param("providerID"),
		CompanyID: role.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if err := h.providers.Update(c.Request.Context(), provider); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteProvider(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.providers.Delete(c.Request.Context(), c.Param("providerID"), role.CompanyID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
