package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/auth"
	"github.com/mmynk/rentbook/internal/models"
	"github.com/mmynk/rentbook/internal/storage"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	msg := req.Msg
	msg.Email = strings.TrimSpace(msg.Email)
	msg.DisplayName = strings.TrimSpace(msg.DisplayName)
	s.logger.Info("Register request", "email", msg.Email)

	fields := requestFields(msg)
	if _, ok := fields["password"]; !ok {
		if err := s.authenticator.ValidateCredential(msg.Password); err != nil {
			fields["password"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return nil, api.NewValidationError(errInvalidRequest, fields)
	}

	user, err := s.authenticator.Register(ctx, msg.Email, msg.DisplayName, msg.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			s.logger.Warn("Registration rejected", "email", msg.Email, "error", err)
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		s.logger.Error("Registration failed", "email", msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.RegisterResponse{
		User:  api.FromUser(user),
		Token: token,
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{
		User:  api.FromUser(user),
		Token: token,
	}), nil
}

// GetCurrentUser returns the authenticated user's profile.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: api.FromUser(user)}), nil
}

// UpdateProfile changes the display name and/or email.
func (s *AuthService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	msg := req.Msg
	if msg.DisplayName != nil {
		*msg.DisplayName = strings.TrimSpace(*msg.DisplayName)
	}
	if msg.Email != nil {
		*msg.Email = strings.TrimSpace(*msg.Email)
	}
	if err := checkRequest(msg); err != nil {
		return nil, err
	}

	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("UpdateProfile request", "user_id", user.ID)

	if msg.Email != nil && models.NormalizeEmail(*msg.Email) != user.Email {
		email := models.NormalizeEmail(*msg.Email)
		existing, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			s.logger.Error("UpdateProfile failed", "user_id", user.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		if existing != nil {
			return nil, connect.NewError(connect.CodeAlreadyExists, auth.ErrEmailExists)
		}
		user.Email = email
	}
	if msg.DisplayName != nil {
		user.DisplayName = *msg.DisplayName
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Error("UpdateProfile failed", "user_id", user.ID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Profile updated", "user_id", user.ID)
	return connect.NewResponse(&api.UpdateProfileResponse{User: api.FromUser(user)}), nil
}

// DeleteAccount removes the user and every tenant, invoice and setting they own.
func (s *AuthService) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteAccount request", "user_id", userID)

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("DeleteAccount failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Account deleted", "user_id", userID)
	return connect.NewResponse(&api.DeleteAccountResponse{UserID: userID}), nil
}

func (s *AuthService) currentUser(ctx context.Context) (*models.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load user", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if user == nil {
		// token outlived the account
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	return user, nil
}
