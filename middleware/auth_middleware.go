package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/services"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys set by the authentication gate
const (
	IdentityKey = "identity"
	UserIDKey   = "userId"
	RoleKey     = "role"
)

// TokenValidator verifies a raw session token
type TokenValidator interface {
	Validate(token string) (*dto.TokenClaims, error)
}

// UserFinder resolves a user id to an account
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// AuthGate resolves the token on a request to an Identity
type AuthGate struct {
	tokens    TokenValidator
	users     UserFinder
	blacklist services.TokenBlacklist
	cookies   CookieSettings
	log       *logrus.Logger
}

// NewAuthGate creates the authentication gate
func NewAuthGate(tokens TokenValidator, users UserFinder, blacklist services.TokenBlacklist, cookies CookieSettings, log *logrus.Logger) *AuthGate {
	if blacklist == nil {
		blacklist = services.NoopTokenBlacklist{}
	}
	return &AuthGate{tokens: tokens, users: users, blacklist: blacklist, cookies: cookies, log: log}
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the session cookie. It returns "" when neither carries a token.
func ExtractToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		if token := strings.TrimSpace(header[7:]); token != "" {
			return token
		}
	}

	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	cookie = strings.TrimSpace(cookie)
	if cookie == clearedCookieValue {
		return ""
	}
	return cookie
}

// Authenticate resolves token to an identity. The returned identity never
// carries the password hash.
func (g *AuthGate) Authenticate(ctx context.Context, token string) (*dto.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.Unauthenticated("Not authorized to access this route")
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	revoked, err := g.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to check token revocation", err)
	}
	if revoked {
		return nil, apperrors.New(apperrors.KindInvalidToken, "Token has been revoked, please log in again")
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthenticated("The user belonging to this token no longer exists. Please clear your token and log in again")
		}
		return nil, err
	}

	identity := dto.IdentityFromUser(user)
	return &identity, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the identity
// in the gin context for downstream handlers. A rejected token also clears
// the session cookie so the browser stops resubmitting it.
func (g *AuthGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, g.cookies.Name)

		identity, err := g.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperrors.HTTPStatus(apperrors.KindOf(err))
			if token != "" && status == http.StatusUnauthorized {
				ClearSessionCookie(c, g.cookies)
			}
			if status == http.StatusUnauthorized {
				g.log.WithFields(logrus.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"kind":   apperrors.KindOf(err),
				}).Warn("Authentication rejected")
			}
			utils.RespondError(c, g.log, err)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, identity.ID)
		c.Set(RoleKey, string(identity.Role))
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by the gate, or nil
func CurrentIdentity(c *gin.Context) *dto.Identity {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*dto.Identity)
	return identity
}
