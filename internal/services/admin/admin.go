// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package admin implements the allow-list gated approval workflow.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/account"
	"codeberg.org/oliverandrich/inkwell/internal/services/email"
)

// ErrUserNotFound is returned when the target user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Service implements the admin operations. Admin identity comes from
// the configured allow-list, not from a database role.
type Service struct {
	repo   *repository.Repository
	mailer email.Mailer
	admins map[string]struct{}
}

// NewService creates a new admin service.
func NewService(repo *repository.Repository, mailer email.Mailer, admins map[string]struct{}) *Service {
	return &Service{repo: repo, mailer: mailer, admins: admins}
}

// IsAdmin reports whether the address is on the admin allow-list.
func (s *Service) IsAdmin(address string) bool {
	_, ok := s.admins[account.NormalizeEmail(address)]
	return ok
}

// ListPendingUsers returns all accounts awaiting approval, oldest first.
func (s *Service) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListPendingUsers(ctx)
}

// Approve sets the target account to approved and records the approving
// admin. Approving an already approved account is an idempotent success
// and does not re-send the welcome mail. The welcome mail itself is
// best-effort: a send failure never fails the approval.
func (s *Service) Approve(ctx context.Context, adminID, targetID int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status == models.StatusApproved {
		return user, nil
	}

	if err := s.repo.ApproveUser(ctx, targetID, adminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
		slog.Warn("welcome email failed", "user_id", user.ID, "error", err)
	}

	return s.repo.GetUserByID(ctx, targetID)
}

// Reject sets the target account to rejected.
func (s *Service) Reject(ctx context.Context, targetID int64) (*models.User, error) {
	if err := s.repo.RejectUser(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.repo.GetUserByID(ctx, targetID)
}
