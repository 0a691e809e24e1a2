package services

import (
	"errors"
	"time"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and verifies signed session tokens. It holds no state
// beyond its signing key.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service signing with HS256
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

// Generate generates a new JWT token for a user
func (s *TokenService) Generate(user models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := dto.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate verifies signature and expiry. Expired tokens yield KindExpiredToken,
// every other failure KindInvalidToken.
func (s *TokenService) Validate(tokenString string) (*dto.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.KindExpiredToken, "Token has expired, please log in again", err)
		}
		return nil, apperrors.Wrap(apperrors.KindInvalidToken, "Invalid token, please log in again", err)
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.New(apperrors.KindInvalidToken, "Invalid token claims")
	}

	return claims, nil
}
