package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/luisale89/storage-manager-sub000/internal/cache"
	"github.com/luisale89/storage-manager-sub000/internal/mail"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/service"
)

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrCompanyNotFound,
	repository.ErrRoleNotFound,
	repository.ErrStorageNotFound,
	repository.ErrContainerNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrItemNotFound,
	repository.ErrAttributeNotFound,
	repository.ErrProviderNotFound,
	repository.ErrAcquisitionNotFound,
}

// respondError maps service and repository sentinels onto the HTTP error
// taxonomy. Cross-tenant ids surface as plain not_found so a caller cannot
// distinguish "absent" from "someone else's".
func (h HandlerSet) respondError(c *gin.Context, err error) {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "account_disabled"})
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailRegistered),
		errors.Is(err, service.ErrMemberExists),
		errors.Is(err, service.ErrSelfModify),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, mail.ErrMailUnavailable),
		errors.Is(err, cache.ErrRevocationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service_unavailable"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

// pagination reads ?page and ?perPage the same way across list endpoints.
func pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
