// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/inkwell/internal/middleware"
	"codeberg.org/oliverandrich/inkwell/internal/services/account"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains the account lifecycle handlers.
type AuthHandlers struct {
	accounts *account.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts *account.Service) *AuthHandlers {
	return &AuthHandlers{accounts: accounts}
}

// SignupRequest is the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup creates a new account and sends the verification email.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	result, err := h.accounts.Signup(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	msg := "Account created. Check your inbox to verify your email."
	if !result.EmailSent {
		msg = "Account created, but the verification email could not be sent. Use resend to try again."
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"msg":       msg,
		"id":        result.User.ID,
		"emailSent": result.EmailSent,
	})
}

// SigninRequest is the request body for signing in.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin checks the credentials and lifecycle gates and returns a
// session token.
func (h *AuthHandlers) Signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	token, user, err := h.accounts.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"jwt": token,
		"id":  user.ID,
	})
}

// VerifyEmailRequest is the request body for consuming a verification
// token.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// VerifyEmail consumes a verification token. Verifying twice reports
// success with a hint instead of an error.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	alreadyVerified, err := h.accounts.VerifyEmail(c.Request().Context(), req.Email, req.Token)
	if err != nil {
		return serviceError(c, err)
	}

	msg := "Email verified. Your account is awaiting approval."
	if alreadyVerified {
		msg = "Email is already verified."
	}
	return c.JSON(http.StatusOK, map[string]any{
		"msg":             msg,
		"alreadyVerified": alreadyVerified,
	})
}

// ResendRequest is the request body for re-sending the verification
// email.
type ResendRequest struct {
	Email string `json:"email"`
}

// ResendVerification re-sends the verification email. The response is
// the same whether or not the account exists.
func (h *AuthHandlers) ResendVerification(c echo.Context) error {
	var req ResendRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	if _, err := h.accounts.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"msg": "If an unverified account exists for this address, a new verification email has been sent.",
	})
}

// ProfileRequest is the request body for updating display preferences.
type ProfileRequest struct {
	Bio      string `json:"bio"`
	ThemeKey string `json:"themeKey"`
}

// UpdateProfile updates the bio and theme preference of the
// authenticated user.
func (h *AuthHandlers) UpdateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Inputs are incorrect")
	}

	user := middleware.CurrentUser(c)
	if err := h.accounts.UpdateProfile(c.Request().Context(), user.ID, req.Bio, req.ThemeKey); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"msg": "Profile updated"})
}
