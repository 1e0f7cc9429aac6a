package middleware

import (
	"net/http"
	"strings"
	"time"

	"compliance-tracker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// IssueToken signs an HS256 token carrying the principal claims.
func IssueToken(secret []byte, p model.Principal, ttl time.Duration) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  p.UserID,
		"bid":  p.BusinessID,
		"role": p.Role,
		"exp":  time.Now().Add(ttl).Unix(),
	}).SignedString(secret)
}

// JWTAuth authenticates the bearer token and attaches the principal.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		uid, uidOK := claims["uid"].(float64)
		bid, bidOK := claims["bid"].(float64)
		role, roleOK := claims["role"].(string)
		if !uidOK || !bidOK || !roleOK {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		p := model.Principal{UserID: int(uid), BusinessID: int(bid), Role: role}
		c.Set(principalKey, p)

		// Renew when less than a day remains.
		if exp, ok := claims["exp"].(float64); ok {
			if time.Until(time.Unix(int64(exp), 0)) < 24*time.Hour {
				newToken, _ := IssueToken(secret, p, 7*24*time.Hour)
				c.Header("X-New-Token", newToken)
			}
		}

		c.Next()
	}
}

// OwnerOnly gates owner-scoped routes. Must run after JWTAuth.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !p.IsOwner() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "owner access required"})
			return
		}
		if p.BusinessID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "business context required"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
