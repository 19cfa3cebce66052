// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account owns the user lifecycle: signup, email verification,
// resend cooldown, and the sign-in gate.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"codeberg.org/oliverandrich/inkwell/internal/models"
	"codeberg.org/oliverandrich/inkwell/internal/repository"
	"codeberg.org/oliverandrich/inkwell/internal/services/email"
	"codeberg.org/oliverandrich/inkwell/internal/services/session"
	"codeberg.org/oliverandrich/inkwell/internal/services/verification"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxBioLength      = 100
)

var (
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrWeakPassword          = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrPendingApproval       = errors.New("account pending approval")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")
	ErrBioTooLong            = fmt.Errorf("bio must be at most %d characters", maxBioLength)
)

// dummyHash is used for constant-time sign-in to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// CooldownError is returned when a resend is requested before the
// cooldown has passed.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting another email", e.RetryAfterSeconds())
}

// RetryAfterSeconds returns the remaining wait rounded up to full
// seconds, always at least 1.
func (e *CooldownError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Service implements the account lifecycle.
type Service struct {
	repo     *repository.Repository
	mailer   email.Mailer
	sessions *session.Issuer
	admins   map[string]struct{}
	now      func() time.Time
}

// NewService creates a new account service. admins is the normalized
// allow-list of admin email addresses.
func NewService(repo *repository.Repository, mailer email.Mailer, sessions *session.Issuer, admins map[string]struct{}) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		sessions: sessions,
		admins:   admins,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NormalizeEmail trims and lowercases an address. All email lookups and
// the admin allow-list use this form.
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsAdmin reports whether the address is on the admin allow-list.
func (s *Service) IsAdmin(address string) bool {
	_, ok := s.admins[NormalizeEmail(address)]
	return ok
}

// SignupResult reports the outcome of a signup. EmailSent is false when
// the account was created but the verification mail could not be
// delivered; the user can recover via ResendVerification.
type SignupResult struct {
	User      *models.User
	EmailSent bool
}

// Signup creates a new account in the unverified state. Accounts whose
// email is on the admin allow-list start approved, everyone else starts
// pending. The mail send is best-effort and never rolls back the row.
func (s *Service) Signup(ctx context.Context, address, password, name string) (*SignupResult, error) {
	address = NormalizeEmail(address)
	if _, err := mail.ParseAddress(address); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	token, err := verification.GenerateToken()
	if err != nil {
		return nil, err
	}

	status := models.StatusPending
	if s.IsAdmin(address) {
		status = models.StatusApproved
	}

	now := s.now().UTC()
	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:                 address,
		Name:                  strings.TrimSpace(name),
		PasswordHash:          string(passwordHash),
		Status:                status,
		VerificationTokenHash: verification.HashToken(token),
		VerificationExpiresAt: verification.ExpiryFrom(now),
		VerificationSentAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	result := &SignupResult{User: user, EmailSent: true}
	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, token); err != nil {
		slog.Warn("verification email failed", "user_id", user.ID, "error", err)
		result.EmailSent = false
	}

	return result, nil
}

// VerifyEmail consumes a verification token. Verifying an already
// verified account is an idempotent success and reported via the return
// value. The token is single-use: success clears the stored hash.
func (s *Service) VerifyEmail(ctx context.Context, address, token string) (alreadyVerified bool, err error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(address))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrInvalidOrExpiredToken
		}
		return false, err
	}

	if user.Verified() {
		return true, nil
	}

	if !user.VerificationTokenHash.Valid || user.VerificationTokenHash.String != verification.HashToken(token) {
		return false, ErrInvalidOrExpiredToken
	}
	if !user.VerificationExpiresAt.Valid || s.now().After(user.VerificationExpiresAt.Time) {
		return false, ErrInvalidOrExpiredToken
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID, s.now().UTC()); err != nil {
		return false, err
	}
	return false, nil
}

// ResendVerification issues a fresh token and re-sends the verification
// mail. It reports sent=false without error for unknown or already
// verified accounts so that handlers can answer with a generic message
// that does not leak account existence. A send within the cooldown
// window fails with a CooldownError.
func (s *Service) ResendVerification(ctx context.Context, address string) (sent bool, err error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(address))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.Verified() {
		return false, nil
	}

	now := s.now()
	if user.VerificationSentAt.Valid {
		elapsed := now.Sub(user.VerificationSentAt.Time)
		if elapsed >= 0 && elapsed < verification.ResendCooldown {
			return false, &CooldownError{RetryAfter: verification.ResendCooldown - elapsed}
		}
	}

	token, err := verification.GenerateToken()
	if err != nil {
		return false, err
	}

	// The new token overwrites the old one; only one token is ever
	// outstanding per user.
	err = s.repo.ReplaceVerificationToken(ctx, user.ID,
		verification.HashToken(token), verification.ExpiryFrom(now.UTC()), now.UTC())
	if err != nil {
		return false, err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, token); err != nil {
		slog.Warn("verification email failed", "user_id", user.ID, "error", err)
		return false, nil
	}
	return true, nil
}

// SignIn checks the credentials and the lifecycle gates, then mints a
// session token. Only verified and approved accounts get a session.
func (s *Service) SignIn(ctx context.Context, address, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(address))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same time as a real comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Verified() {
		return "", nil, ErrEmailNotVerified
	}
	if user.Status != models.StatusApproved {
		return "", nil, ErrPendingApproval
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UpdateProfile updates the bio and theme preference of a user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, bio, themeKey string) error {
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > maxBioLength {
		return ErrBioTooLong
	}
	return s.repo.UpdateUserProfile(ctx, userID, bio, strings.TrimSpace(themeKey))
}
