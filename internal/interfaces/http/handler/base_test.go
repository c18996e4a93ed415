package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestor/backend/internal/domain/shared"
	"github.com/gestor/backend/internal/infrastructure/auth"
	"github.com/gestor/backend/internal/interfaces/http/dto"
	"github.com/gestor/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleDomainError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("not found maps to 404", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleDomainError(c, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("concurrency conflict maps to 409", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleDomainError(c, shared.ErrConcurrencyConflict)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("state violation maps to 400", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleDomainError(c, shared.NewDomainError("INVALID_STATE", "Cancelled obligations cannot be settled"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "INVALID_STATE", resp.Error.Code)
	})

	t.Run("unknown error maps to 500", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleDomainError(c, errors.New("database exploded"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		// Internal details must not leak to clients
		assert.NotContains(t, resp.Error.Message, "exploded")
	})

	t.Run("request id is echoed in error responses", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Set("request_id", "req-42")
		h.HandleDomainError(c, shared.ErrNotFound)

		resp := decodeResponse(t, w)
		assert.Equal(t, "req-42", resp.RequestID)
	})
}

func TestCallerContext(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("missing claims", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, err := callerContext(c)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("tenant bound caller", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID:   userID.String(),
			TenantID: tenantID.String(),
			Roles:    []string{"finance_clerk"},
		})

		caller, err := callerContext(c)
		require.NoError(t, err)
		assert.Equal(t, userID, caller.UserID)
		require.NotNil(t, caller.TenantID)
		assert.Equal(t, tenantID, *caller.TenantID)
		assert.False(t, caller.IsGlobalAdmin)
	})

	t.Run("global admin without tenant header", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID: userID.String(),
			Roles:  []string{"global_admin"},
		})

		caller, err := callerContext(c)
		require.NoError(t, err)
		assert.True(t, caller.IsGlobalAdmin)
		assert.Nil(t, caller.TenantID)
		assert.Nil(t, caller.RequestedTenantID)
	})

	t.Run("global admin selecting a tenant", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set(TenantHeaderKey, tenantID.String())
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID: userID.String(),
			Roles:  []string{"global_admin"},
		})

		caller, err := callerContext(c)
		require.NoError(t, err)
		assert.True(t, caller.IsGlobalAdmin)
		require.NotNil(t, caller.RequestedTenantID)
		assert.Equal(t, tenantID, *caller.RequestedTenantID)
	})

	t.Run("global admin with malformed tenant header", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set(TenantHeaderKey, "not-a-uuid")
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID: userID.String(),
			Roles:  []string{"global_admin"},
		})

		_, err := callerContext(c)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("invalid user id in claims", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID:   "garbage",
			TenantID: tenantID.String(),
		})

		_, err := callerContext(c)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}
