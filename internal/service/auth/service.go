package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	auditsvc "github.com/cmlabs-hris/payroll-backend-go/internal/service/audit"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	auth.RefreshTokenRepository
	jwt.Service
	audit *auditsvc.Recorder
}

func NewAuthService(userRepository user.UserRepository, refreshTokens auth.RefreshTokenRepository, jwtService jwt.Service, recorder *auditsvc.Recorder) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository:         userRepository,
		RefreshTokenRepository: refreshTokens,
		Service:                jwtService,
		audit:                  recorder,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens mints an access/refresh pair and persists the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		resp auth.TokenResponse
		err  error
	)

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Username, u.EmployeeID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := a.CreateRefreshToken(ctx, u.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	resp.User = user.NewUserResponse(u)
	a.audit.RecordAs(ctx, u.ID, audit.ActionLogin, "users", u.ID)
	return resp, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, u, session)
}

// LoginWithGoogle implements auth.AuthService. Only existing accounts can
// sign in; Google never provisions users.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	u, err := a.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return a.issueTokens(ctx, u, session)
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Signature, expiry and token type
	userID, err := a.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Revocation, checked against the stored hash
	owner, revoked, err := a.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	if owner != userID {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 3. Fresh claims from the current user row
	u, err := a.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.GenerateAccessToken(u.ID, u.Username, u.EmployeeID, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService. Either token may be empty.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string, accessToken string) error {
	if refreshToken != "" {
		if err := a.RevokeRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	if accessToken != "" {
		if err := a.RevokeToken(ctx, accessToken); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	return nil
}

// ChangePassword implements auth.AuthService for the authenticated caller.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	u, err := a.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.UpdatePassword(ctx, u.ID, hash)
}
