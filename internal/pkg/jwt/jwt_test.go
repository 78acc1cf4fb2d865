package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() Service {
	return NewJWTService("test-secret", 15*time.Minute, 24*time.Hour, nil, false)
}

func TestAccessTokenClaims(t *testing.T) {
	svc := newService()
	empID := "emp-1"

	tokenString, exp, err := svc.GenerateAccessToken("user-1", "asha", &empID, user.RoleEmployee)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	c, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access", claims["type"])
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "asha", c.Username)
	assert.Equal(t, user.RoleEmployee, c.Role)
	require.NotNil(t, c.EmployeeID)
	assert.True(t, c.CanAccessEmployee("emp-1"))
	assert.False(t, c.CanAccessEmployee("emp-2"))
}

func TestClaims_StaffAccessEveryone(t *testing.T) {
	c := Claims{UserID: "u", Role: user.RoleHR}
	assert.True(t, c.CanAccessEmployee("anyone"))

	c = Claims{UserID: "u", Role: user.RoleEmployee}
	assert.False(t, c.CanAccessEmployee("anyone"))
}

func TestClaimsFromContext_Missing(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingClaims)
}

func TestParseRefreshToken(t *testing.T) {
	svc := newService()

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	access, _, err := svc.GenerateAccessToken("user-1", "asha", nil, user.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(access)
	assert.Error(t, err, "access token must not be accepted as refresh token")

	_, err = svc.ParseRefreshToken("garbage")
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	access, _, err := svc.GenerateAccessToken("user-1", "asha", nil, user.RoleAdmin)
	require.NoError(t, err)

	revoked, err := svc.IsTokenRevoked(ctx, access)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, access))
	revoked, err = svc.IsTokenRevoked(ctx, access)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryRevocationStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryRevocationStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "tok", time.Minute))
	ok, _ := store.IsRevoked(ctx, "tok")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.IsRevoked(ctx, "tok")
	assert.False(t, ok)
}
