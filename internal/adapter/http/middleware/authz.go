package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/configs"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

const (
	ctxUserID = "auth.user_id"
	ctxRole   = "auth.role"
)

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// RequireAuth checks the bearer JWT and stashes the caller identity in the
// gin context for attribution. The core stays role-agnostic; handlers only
// read the identity.
func (a *Authz) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.cfg.Security.JWTSecret), nil
		}, jwt.WithLeeway(30*time.Second)) // small clock skew

		if err != nil || !token.Valid {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauth(c, "invalid_token", "claims parsing error")
			return
		}

		if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
			unauth(c, "invalid_token", "iss/aud mismatch")
			return
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if sub == "" {
			unauth(c, "invalid_token", "missing subject")
			return
		}

		c.Set(ctxUserID, sub)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireRole gates a route on the caller's role. Must run after RequireAuth.
func (a *Authz) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		forbidden(c, "insufficient_role", "missing required role")
	}
}

// CurrentUserID returns the authenticated operator id, or "".
func CurrentUserID(c *gin.Context) string {
	id, _ := c.Value(ctxUserID).(string)
	return id
}

func CurrentRole(c *gin.Context) entity.Role {
	r, _ := c.Value(ctxRole).(string)
	return entity.Role(r)
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": desc, "error": code})
}

func forbidden(c *gin.Context, code, desc string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": desc, "error": code})
}
