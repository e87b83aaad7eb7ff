package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// Auth verifies the bearer token and puts the caller's identity into the
// request context. Token issuance happens elsewhere; this layer only trusts
// verified claims.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, email, err := parseBearer(c, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			c.Set(ContextUserID, userID)
			c.Set(ContextEmail, email)
			return next(c)
		}
	}
}

// OptionalAuth sets the identity when a valid token is present and lets
// anonymous requests through; guest carts are keyed by cookie instead.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, email, err := parseBearer(c, secret); err == nil {
				c.Set(ContextUserID, userID)
				c.Set(ContextEmail, email)
			}
			return next(c)
		}
	}
}

func parseBearer(c echo.Context, secret string) (userID, email string, err error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", "", echo.ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", "", echo.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", echo.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", "", echo.ErrUnauthorized
	}
	mail, _ := claims["email"].(string)

	return sub, mail, nil
}

func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

func Email(c echo.Context) string {
	mail, _ := c.Get(ContextEmail).(string)
	return mail
}
