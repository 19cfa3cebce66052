// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"codeberg.org/oliverandrich/inkwell/internal/services/account"
	"codeberg.org/oliverandrich/inkwell/internal/services/admin"
	"codeberg.org/oliverandrich/inkwell/internal/services/feed"
	"github.com/labstack/echo/v4"
)

// fail writes a JSON error response.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"msg": msg})
}

// serviceError maps a service error to its HTTP response. Unexpected
// errors are logged and answered with a generic message so that
// internals never leak to clients.
func serviceError(c echo.Context, err error) error {
	var cooldown *account.CooldownError
	if errors.As(err, &cooldown) {
		retryAfter := cooldown.RetryAfterSeconds()
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return c.JSON(http.StatusTooManyRequests, map[string]any{
			"msg":               cooldown.Error(),
			"retryAfterSeconds": retryAfter,
		})
	}

	switch {
	case errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrWeakPassword),
		errors.Is(err, account.ErrBioTooLong),
		errors.Is(err, feed.ErrInvalidInput),
		errors.Is(err, feed.ErrImageKey):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrEmailTaken):
		return fail(c, http.StatusConflict, "Email already exists")
	case errors.Is(err, account.ErrInvalidCredentials):
		return fail(c, http.StatusForbidden, "Incorrect credentials")
	case errors.Is(err, account.ErrEmailNotVerified):
		return fail(c, http.StatusForbidden, "Please verify your email first")
	case errors.Is(err, account.ErrPendingApproval):
		return fail(c, http.StatusForbidden, "Your account is awaiting approval")
	case errors.Is(err, account.ErrInvalidOrExpiredToken):
		return fail(c, http.StatusBadRequest, "Invalid or expired verification link")
	case errors.Is(err, admin.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, feed.ErrPostNotFound):
		return fail(c, http.StatusNotFound, "Blog not found")
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return fail(c, http.StatusInternalServerError, "Something went wrong")
	}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
