package api

import (
	"context"
	"fmt"

	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// AuthService wraps the AUTH routes
type AuthService struct {
	api *API
}

// Login authenticates and stores the returned token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return s.authenticate(ctx, call{category: routes.AUTH, action: routes.ActionLogin, body: req, validate: true})
}

// Register creates an account and stores the returned token
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.authenticate(ctx, call{category: routes.AUTH, action: routes.ActionRegister, body: req, validate: true})
}

// RefreshToken exchanges the current token for a new one
func (s *AuthService) RefreshToken(ctx context.Context) (*AuthResponse, error) {
	return s.authenticate(ctx, call{category: routes.AUTH, action: routes.ActionRefreshToken})
}

func (s *AuthService) authenticate(ctx context.Context, c call) (*AuthResponse, error) {
	res, err := do[AuthResponse](ctx, s.api, c)
	if err != nil {
		return nil, err
	}
	if res.Token != "" && s.api.tokens != nil {
		if err := s.api.tokens.SetToken(ctx, res.Token); err != nil {
			return nil, fmt.Errorf("auth: failed to store token: %w", err)
		}
	}
	return &res, nil
}

// Logout ends the session. The local token is cleared even when the
// backend call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.api.send(ctx, call{category: routes.AUTH, action: routes.ActionLogout})
	if s.api.tokens != nil {
		if cerr := s.api.tokens.Clear(ctx); cerr != nil {
			s.api.logger.Warn("failed to clear token", zap.Error(cerr))
		}
	}
	return err
}

// Me returns the authenticated user
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	u, err := do[User](ctx, s.api, call{category: routes.AUTH, action: routes.ActionMe})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ForgotPassword requests a password reset email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*Message, error) {
	req := ForgotPasswordRequest{Email: email}
	m, err := do[Message](ctx, s.api, call{category: routes.AUTH, action: routes.ActionForgotPassword, body: req, validate: true})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ResetPassword sets a new password using a reset token
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Message, error) {
	m, err := do[Message](ctx, s.api, call{category: routes.AUTH, action: routes.ActionResetPassword, body: req, validate: true})
	if err != nil {
		return nil, err
	}
	return &m, nil
}
