package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/middleware"
	"github.com/luisale89/storage-manager-sub000/internal/models"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
)

func (h HandlerSet) ListMyCompanies(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	memberships, err := h.companyService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"companies": membershipResponses(memberships)})
}

type createCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3"`
}

func (h HandlerSet) CreateCompany(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), user.ID, req.Name, req.Currency)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       company.ID,
		"name":     company.Name,
		"currency": company.Currency,
	})
}

// SelectCompany exchanges a user token for a tenant-scoped role token.
func (h HandlerSet) SelectCompany(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, role, err := h.authService.SelectCompany(c.Request.Context(), user.ID, c.Param("companyID"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roleToken": token,
		"role": gin.H{
			"id":       role.ID,
			"function": role.Function.Name,
			"level":    role.Function.Level,
		},
	})
}

func (h HandlerSet) GetCompany(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	company, err := h.companies.GetByID(c.Request.Context(), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       company.ID,
		"name":     company.Name,
		"address":  company.Address,
		"currency": company.Currency,
	})
}

type updateCompanyRequest struct {
	Name     string  `json:"name" binding:"required"`
	Address  *string `json:"address"`
	Currency string  `json:"currency" binding:"required,len=3"`
}

func (h HandlerSet) UpdateCompany(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := models.Company{
		ID:       role.CompanyID,
		Name:     req.Name,
		Address:  req.Address,
		Currency: req.Currency,
	}
	if err := h.companies.Update(c.Request.Context(), company); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListMembers(c *gin.Context) {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	memberships, err := h.companyService.ListMembers(c.Request.Context(), role.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": membershipResponses(memberships)})
}

// Level is a pointer so a missing field fails binding instead of decoding
// to zero, which is the owner level.
type inviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Level *int   `json:"level" binding:"required,min=0,max=3"`
}

func (h HandlerSet) InviteMember(c *gin.Context) {
	actor, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req inviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.companyService.Invite(c.Request.Context(), actor, req.Email, models.RoleLevel(*req.Level))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"roleId":   role.ID,
		"function": role.Function.Name,
		"level":    role.Function.Level,
	})
}

type updateMemberRequest struct {
	Level  *int  `json:"level" binding:"omitempty,min=0,max=3"`
	Active *bool `json:"active"`
}

func (h HandlerSet) UpdateMember(c *gin.Context) {
	actor, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Level == nil && req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	roleID := c.Param("roleID")
	ctx := c.Request.Context()

	if req.Level != nil {
		if err := h.companyService.UpdateMemberLevel(ctx, actor, roleID, models.RoleLevel(*req.Level)); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.Active != nil {
		if err := h.companyService.SetMemberActive(ctx, actor, roleID, *req.Active); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveMember(c *gin.Context) {
	actor, ok := middleware.CurrentRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.companyService.RemoveMember(c.Request.Context(), actor, c.Param("roleID")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func membershipResponses(memberships []repository.Membership) []gin.H {
	resp := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		resp = append(resp, gin.H{
			"roleId":      m.ID,
			"companyId":   m.CompanyID,
			"companyName": m.CompanyName,
			"userEmail":   m.UserEmail,
			"userName":    m.UserName,
			"function":    m.Function.Name,
			"level":       m.Function.Level,
			"active":      m.IsActive,
		})
	}
	return resp
}
