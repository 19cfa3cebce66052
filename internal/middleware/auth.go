// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware contains the authentication middlewares.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/services/session"
	"github.com/labstack/echo/v4"
)

// userContextKey is the echo context key the authenticated user is
// stored under.
const userContextKey = "auth_user"

// UserLoader is an interface for loading the authenticated user.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AdminChecker decides admin privilege from an email address.
type AdminChecker interface {
	IsAdmin(email string) bool
}

// RequireUser verifies the bearer token and loads the user into the
// context. A missing or malformed Authorization header fails before any
// token verification is attempted.
func RequireUser(issuer *session.Issuer, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"msg": "Missing authorization token"})
			}

			userID, err := issuer.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"msg": "You are not logged in"})
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"msg": "You are not logged in"})
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// RequireAdmin checks the authenticated user against the admin
// allow-list. Must run after RequireUser.
func RequireAdmin(admins AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !admins.IsAdmin(user.Email) {
				return c.JSON(http.StatusForbidden, map[string]string{"msg": "Admin access required"})
			}
			return next(c)
		}
	}
}

// SetCurrentUser stores the authenticated user in the context.
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the authenticated user, or nil outside of
// RequireUser-protected routes.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
