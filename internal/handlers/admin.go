// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/services/admin"
	"github.com/labstack/echo/v4"
)

// AdminHandlers contains the approval workflow handlers. All routes are
// behind the admin allow-list middleware.
type AdminHandlers struct {
	admins *admin.Service
}

// NewAdmin creates a new AdminHandlers instance.
func NewAdmin(admins *admin.Service) *AdminHandlers {
	return &AdminHandlers{admins: admins}
}

type pendingUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPendingUsers lists the accounts awaiting approval.
func (h *AdminHandlers) ListPendingUsers(c echo.Context) error {
	users, err := h.admins.ListPendingUsers(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]pendingUser, 0, len(users))
	for _, u := range users {
		out = append(out, pendingUser{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, map[string]any{"users": out})
}

// Approve approves the target account.
func (h *AdminHandlers) Approve(c echo.Context) error {
	targetID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}

	adminUser := middleware.CurrentUser(c)
	user, err := h.admins.Approve(c.Request().Context(), adminUser.ID, targetID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"msg":  "User approved",
		"user": statusView(user),
	})
}

// Reject rejects the target account.
func (h *AdminHandlers) Reject(c echo.Context) error {
	targetID, ok := pathID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}

	user, err := h.admins.Reject(c.Request().Context(), targetID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"msg":  "User rejected",
		"user": statusView(user),
	})
}

func statusView(u *models.User) map[string]any {
	return map[string]any{
		"id":     u.ID,
		"email":  u.Email,
		"status": u.Status,
	}
}
