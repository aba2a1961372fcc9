package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Platform endpoints. These bypass tenant scoping and are reachable only
// behind the super user gate.

func (h HandlerSet) AdminListCompanies(c *gin.Context) {
	limit, offset := pagination(c)
	companies, err := h.companies.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(companies))
	for _, company := range companies {
		resp = append(resp, gin.H{
			"id":        company.ID,
			"name":      company.Name,
			"currency":  company.Currency,
			"createdAt": company.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"companies": resp})
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(users))
	for _, user := range users {
		resp = append(resp, gin.H{
			"id":              user.ID,
			"email":           user.Email,
			"displayName":     user.DisplayName,
			"emailConfirmed":  user.EmailConfirmed,
			"signupCompleted": user.SignupCompleted,
			"createdAt":       user.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// AdminUpdateUserStatus flips the account flags that decide whether a user
// can authenticate at all.
func (h HandlerSet) AdminUpdateUserStatus(c *gin.Context) {
	var req struct {
		EmailConfirmed  bool `json:"emailConfirmed"`
		SignupCompleted bool `json:"signupCompleted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateFlags(c.Request.Context(), c.Param("userID"), req.EmailConfirmed, req.SignupCompleted); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
