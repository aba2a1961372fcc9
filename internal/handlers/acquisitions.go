package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/service"
)

type acquisitionLineRequest struct {
	ItemID      string  `json:"itemId" binding:"required"`
	ContainerID string  `json:"containerId" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitCost    float64 `json:"unitCost"`
}

type acquisitionRequest struct {
	ProviderID *string                  `json:"providerId"`
	Reference  string                   `json:"reference" binding:"required"`
	Notes      *string                  `json:"notes"`
	Lines      []acquisitionLineRequest `json:"lines" binding:"required,min=1"`
}

func acquisitionResponse(acquisition models.Acquisition) gin.H {
	return gin.H{
		"id":         acquisition.ID,
		"providerId": acquisition.ProviderID,
		"reference":  acquisition.Reference,
		"notes":      acquisition.Notes,
		"createdBy":  acquisition.CreatedBy,
		"createdAt":  acquisition.CreatedAt,
	}
}

func (h HandlerSet) CreateAcquisition(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req acquisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.AcquisitionInput{
		ProviderID: req.ProviderID,
		Reference:  req.Reference,
		Notes:      req.Notes,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, service.AcquisitionLineInput{
			ItemID:      line.ItemID,
			ContainerID: line.ContainerID,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}

	acquisition, err := h.inventoryService.CreateAcquisition(c.Request.Context(), role, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, acquisitionResponse(acquisition))
}

func (h HandlerSet) ListAcquisitions(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	acquisitions, err := h.acquisitions.List(c.Request.Context(), role.CompanyID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(acquisitions))
	for _, acquisition := range acquisitions {
		resp = append(resp, acquisitionResponse(acquisition))
	}
	c.JSON(http.StatusOK, gin.H{"acquisitions": resp})
}

func (h HandlerSet) GetAcquisition(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acquisition, lines, err := h.acquisitions.GetByID(c.Request.Context(), c.Param("acquisitionID"), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	lineResp := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		lineResp = append(lineResp, gin.H{
			"id":          line.ID,
			"itemId":      line.ItemID,
			"containerId": line.ContainerID,
			"quantity":    line.Quantity,
			"unitCost":    line.UnitCost,
		})
	}

	resp := acquisitionResponse(acquisition)
	resp["lines"] = lineResp
	c.JSON(http.StatusOK, resp)
}
