package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/service/auth"
	"github.com/novadent/novadent_backend/pkg/store"
)

type AuthHandler struct {
	svc auth.Service
	st  *store.Client
}

func NewAuthHandler(svc auth.Service, st *store.Client) *AuthHandler {
	return &AuthHandler{svc: svc, st: st}
}

// POST /auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	// Login happens before any bearer token exists, so the username
	// lookup runs under the anon key.
	sess, err := h.svc.Login(c.Context(), h.st.Anon(), req)
	if err != nil {
		if errors.Is(err, auth.ErrValidation) || errors.Is(err, auth.ErrInvalidCredentials) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}

	return ok(c, fiber.Map{
		"token":         sess.AccessToken,
		"refresh_token": sess.RefreshToken,
		"expires_in":    sess.ExpiresIn,
		"user":          sess.User,
	})
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.svc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrValidation) || errors.Is(err, auth.ErrInvalidCredentials) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}

	return ok(c, fiber.Map{
		"token":         sess.AccessToken,
		"refresh_token": sess.RefreshToken,
		"expires_in":    sess.ExpiresIn,
		"user":          sess.User,
	})
}
