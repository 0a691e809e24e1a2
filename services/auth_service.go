package services

import (
	"context"
	"strings"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/repositories"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and logout
type AuthService struct {
	users     *repositories.UserRepository
	tokens    *TokenService
	blacklist TokenBlacklist
	log       *logrus.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(users *repositories.UserRepository, tokens *TokenService, blacklist TokenBlacklist, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, blacklist: blacklist, log: log}
}

// Register creates a new account with the user role
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	return s.createUser(ctx, req.Email, req.Username, req.Password, models.RoleUser)
}

// EnsureAdmin creates an admin account unless the email is already registered.
// It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return false, err
	}
	if _, err := s.createUser(ctx, email, username, password, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, email, username, password string, role models.Role) (models.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || len(password) < 6 {
		return models.User{}, apperrors.Validation("username, email and a password of at least 6 characters are required")
	}

	// Check if email or username already exists
	emailTaken, usernameTaken, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return models.User{}, err
	}
	if emailTaken {
		return models.User{}, apperrors.Conflict("email already registered")
	}
	if usernameTaken {
		return models.User{}, apperrors.Conflict("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperrors.Internal("failed to hash password", err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("User registered")
	return user, nil
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	return &dto.AuthResponse{
		Token:     token,
		User:      dto.NewUserResponse(user),
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes the presented token when it is still valid. Invalid or
// expired tokens need no revocation.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.Internal("failed to revoke token", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
