package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luisale89/storage-manager-sub000/internal/cache"
	"github.com/luisale89/storage-manager-sub000/internal/mail"
	"github.com/luisale89/storage-manager-sub000/internal/repository"
	"github.com/luisale89/storage-manager-sub000/internal/service"
)

func respondStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/t", nil)

	h := HandlerSet{log: zerolog.Nop()}
	h.respondError(c, err)
	return rec.Code
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user not found", repository.ErrUserNotFound, http.StatusNotFound},
		{"item not found", repository.ErrItemNotFound, http.StatusNotFound},
		{"storage not found", repository.ErrStorageNotFound, http.StatusNotFound},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"account disabled", service.ErrAccountDisabled, http.StatusForbidden},
		{"invalid code", service.ErrInvalidCode, http.StatusBadRequest},
		{"invalid quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"email registered", service.ErrEmailRegistered, http.StatusConflict},
		{"member exists", service.ErrMemberExists, http.StatusConflict},
		{"self modify", service.ErrSelfModify, http.StatusConflict},
		{"duplicate row", repository.ErrDuplicate, http.StatusConflict},
		{"insufficient stock", repository.ErrInsufficientStock, http.StatusConflict},
		{"mail down", mail.ErrMailUnavailable, http.StatusServiceUnavailable},
		{"revocation store down", cache.ErrRevocationUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := respondStatus(t, tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	page := func(t *testing.T, query string) (int, int) {
		t.Helper()
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/t"+query, nil)
		return pagination(c)
	}

	limit, offset := page(t, "")
	if limit != 50 || offset != 0 {
		t.Fatalf("defaults: got %d/%d", limit, offset)
	}

	limit, offset = page(t, "?perPage=20&page=3")
	if limit != 20 || offset != 40 {
		t.Fatalf("page 3 of 20: got %d/%d", limit, offset)
	}

	limit, _ = page(t, "?perPage=9999")
	if limit != 50 {
		t.Fatalf("oversized perPage must fall back to default, got %d", limit)
	}

	_, offset = page(t, "?page=-2")
	if offset != 0 {
		t.Fatalf("negative page must not offset, got %d", offset)
	}
}
