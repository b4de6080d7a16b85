package usecase

import (
	"testing"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterClientAndLogin(t *testing.T) {
	f := newFixture(t)

	registered, err := f.uc.Auth.RegisterClient(t.Context(), &dto.RegisterClientRequest{
		TenantSlug: "sunrise",
		Email:      "New@Client.test",
		Password:   "password1",
		FullName:   "Nora New",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, "new@client.test", registered.User.Email)
	assert.Equal(t, entity.RoleClient, registered.User.Role)

	_, err = f.uc.Auth.RegisterClient(t.Context(), &dto.RegisterClientRequest{
		TenantSlug: "sunrise",
		Email:      "new@client.test",
		Password:   "password1",
		FullName:   "Nora Again",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	tokens, err := f.uc.Auth.Login(t.Context(), &dto.LoginRequest{TenantSlug: "sunrise", Email: "new@client.test", Password: "password1"})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.tenant.ID, claims.TenantID)
	assert.Equal(t, entity.RoleIDClient, claims.RoleID)
	assert.Equal(t, jwt.AccessToken, claims.TokenType)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  dto.LoginRequest
		want error
	}{
		{"wrong password", dto.LoginRequest{TenantSlug: "sunrise", Email: f.client.Email, Password: "nope"}, ErrInvalidCredentials},
		{"unknown email", dto.LoginRequest{TenantSlug: "sunrise", Email: "ghost@sunrise.test", Password: "secret123"}, ErrInvalidCredentials},
		{"unknown tenant", dto.LoginRequest{TenantSlug: "elsewhere", Email: f.client.Email, Password: "secret123"}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Auth.Login(t.Context(), &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	require.NoError(t, f.db.Model(f.client).Update("is_active", false).Error)
	_, err := f.uc.Auth.Login(t.Context(), &dto.LoginRequest{TenantSlug: "sunrise", Email: f.client.Email, Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	f := newFixture(t)
	tokens, err := f.uc.Auth.Login(t.Context(), &dto.LoginRequest{TenantSlug: "sunrise", Email: f.client.Email, Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := f.uc.Auth.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	_, err = f.uc.Auth.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.uc.Auth.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	f := newFixture(t)
	tokens, err := f.uc.Auth.Login(t.Context(), &dto.LoginRequest{TenantSlug: "sunrise", Email: f.client.Email, Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.count())

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	ctx := middleware.WithPrincipal(t.Context(), middleware.Principal{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		RoleID:   claims.RoleID,
		Email:    claims.Email,
		TokenID:  claims.TokenID,
	})

	require.NoError(t, f.uc.Auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: tokens.RefreshToken}))
	assert.Zero(t, f.tokens.count())

	_, err = f.uc.Auth.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)

	me, err := f.uc.Auth.GetCurrentUser(f.as(f.provider))
	require.NoError(t, err)
	assert.Equal(t, f.provider.ID, me.ID)

	_, err = f.uc.Auth.GetCurrentUser(t.Context())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
