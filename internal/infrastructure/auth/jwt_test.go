package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestor/backend/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-chars-long!",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "gestor-test",
	})
}

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := newTestService()

	t.Run("tenant user token", func(t *testing.T) {
		tenantID := uuid.New()
		userID := uuid.New()

		token, expiresAt, err := svc.GenerateAccessToken(GenerateTokenInput{
			TenantID: &tenantID,
			UserID:   userID,
			Username: "maria",
			Roles:    []string{"finance"},
		})
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, tenantID.String(), claims.TenantID)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.False(t, claims.IsGlobalAdmin())

		gotTenant, err := claims.GetTenantUUID()
		require.NoError(t, err)
		assert.Equal(t, tenantID, gotTenant)
	})

	t.Run("global admin token has no tenant", func(t *testing.T) {
		userID := uuid.New()

		token, _, err := svc.GenerateAccessToken(GenerateTokenInput{
			UserID:   userID,
			Username: "root",
			Roles:    []string{RoleGlobalAdmin},
		})
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Empty(t, claims.TenantID)
		assert.True(t, claims.IsGlobalAdmin())
	})

	t.Run("empty tenant without admin role is rejected", func(t *testing.T) {
		token, _, err := svc.GenerateAccessToken(GenerateTokenInput{
			UserID:   uuid.New(),
			Username: "joao",
			Roles:    []string{"finance"},
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMissingTenantID)
	})

	t.Run("tenant-bound admin role is not global", func(t *testing.T) {
		tenantID := uuid.New()
		token, _, err := svc.GenerateAccessToken(GenerateTokenInput{
			TenantID: &tenantID,
			UserID:   uuid.New(),
			Username: "admin",
			Roles:    []string{RoleGlobalAdmin},
		})
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.False(t, claims.IsGlobalAdmin())
	})
}

func TestJWTServiceValidation(t *testing.T) {
	svc := newTestService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-also-32-chars-long!!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "gestor-test",
		})
		tenantID := uuid.New()
		token, _, err := other.GenerateAccessToken(GenerateTokenInput{
			TenantID: &tenantID,
			UserID:   uuid.New(),
			Username: "maria",
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-at-least-32-chars-long!",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "gestor-test",
		})
		tenantID := uuid.New()
		token, _, err := expired.GenerateAccessToken(GenerateTokenInput{
			TenantID: &tenantID,
			UserID:   uuid.New(),
			Username: "maria",
		})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
