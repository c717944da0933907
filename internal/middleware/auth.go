package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yatube-dev/yatube/backend/internal/models"
)

// CookieName is the session cookie carrying the JWT for browser clients.
// API clients may send the same token as a bearer header instead.
const CookieName = "auth_token"

// LoginPath is where anonymous requests to protected routes are sent.
const LoginPath = "/auth/login/"

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretjwtkey" // Must match the secret used for signing
	}
	return []byte(secret)
}

// IssueToken signs a JWT for the given user, valid for 72 hours.
func IssueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"exp":      time.Now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func tokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

func identityFromRequest(c *gin.Context) (int, string, bool) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return 0, "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", false
	}
	username, _ := claims["username"].(string)

	return int(rawID), username, true
}

// RequireAuth gates a route to authenticated users. Anonymous requests are
// redirected to the login page with a next parameter pointing back at the
// original path, with no side effect.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := identityFromRequest(c)
		if !ok {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, LoginPath+"?next="+next)
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("username", username)
		c.Next()
	}
}

// OptionalAuth records the viewer's identity when a valid token is present
// and never blocks the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, username, ok := identityFromRequest(c); ok {
			c.Set("user_id", userID)
			c.Set("username", username)
		}
		c.Next()
	}
}
