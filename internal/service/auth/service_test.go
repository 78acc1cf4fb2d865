package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type memUsers struct {
	users map[string]user.User
}

func (m *memUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) find(match func(user.User) bool) (user.User, error) {
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return m.find(func(u user.User) bool { return u.Email == email })
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	m.users[userID] = u
	return nil
}

type memRefreshTokens struct {
	owners  map[string]string
	revoked map[string]bool
}

func (m *memRefreshTokens) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, session auth.SessionTrackingRequest) error {
	m.owners[token] = userID
	return nil
}

func (m *memRefreshTokens) IsRefreshTokenRevoked(ctx context.Context, token string) (string, bool, error) {
	owner, ok := m.owners[token]
	if !ok {
		return "", true, nil
	}
	return owner, m.revoked[token], nil
}

func (m *memRefreshTokens) RevokeRefreshToken(ctx context.Context, token string) error {
	m.revoked[token] = true
	return nil
}

type authHarness struct {
	users  *memUsers
	tokens *memRefreshTokens
	jwt    jwt.Service
	svc    auth.AuthService
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	empID := "emp-1"
	h := &authHarness{
		users: &memUsers{users: map[string]user.User{
			"user-1": {ID: "user-1", Username: "asha", Email: "asha@example.com", PasswordHash: string(hash), Role: user.RoleEmployee, EmployeeID: &empID},
		}},
		tokens: &memRefreshTokens{owners: map[string]string{}, revoked: map[string]bool{}},
		jwt:    jwt.NewJWTService(testSecret, time.Hour, 24*time.Hour, nil, false),
	}
	h.svc = NewAuthService(h.users, h.tokens, h.jwt, nil)
	return h
}

func (h *authHarness) authenticated(t *testing.T, accessToken string) context.Context {
	t.Helper()
	token, err := jwtauth.VerifyToken(h.jwt.JWTAuth(), accessToken)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestAuthService_Login_Success(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Login(ctx, auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{IPAddress: "127.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "emp-1", *resp.User.EmployeeID)
	assert.Equal(t, "user-1", h.tokens.owners[resp.RefreshToken])

	claims, err := jwt.ClaimsFromContext(h.authenticated(t, resp.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, claims.Role)
	assert.True(t, claims.CanAccessEmployee("emp-1"))
	assert.False(t, claims.CanAccessEmployee("emp-2"))
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.svc.Login(context.Background(), auth.LoginRequest{Username: "asha", Password: "wrong"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.svc.Login(context.Background(), auth.LoginRequest{Username: "nobody", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	h := newAuthHarness(t)

	resp, err := h.svc.LoginWithGoogle(context.Background(), "asha@example.com", auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "asha", resp.User.Username)

	_, err = h.svc.LoginWithGoogle(context.Background(), "stranger@example.com", auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	login, err := h.svc.Login(ctx, auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	resp, err := h.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	login, err := h.svc.Login(ctx, auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	_, err = h.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_Logout_Success(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	login, err := h.svc.Login(ctx, auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	require.NoError(t, h.svc.Logout(ctx, login.RefreshToken, login.AccessToken))

	_, err = h.svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	revoked, err := h.jwt.IsTokenRevoked(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	h := newAuthHarness(t)

	login, err := h.svc.Login(context.Background(), auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	ctx := h.authenticated(t, login.AccessToken)

	err = h.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	require.NoError(t, h.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newsecret"}))

	_, err = h.svc.Login(context.Background(), auth.LoginRequest{Username: "asha", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = h.svc.Login(context.Background(), auth.LoginRequest{Username: "asha", Password: "newsecret"}, auth.SessionTrackingRequest{})
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword_RequiresClaims(t *testing.T) {
	h := newAuthHarness(t)

	err := h.svc.ChangePassword(context.Background(), auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
}
