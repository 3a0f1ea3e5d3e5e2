package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/internal/api/http/middleware"
	"github.com/novadent/novadent_backend/pkg/reqctx"
	"github.com/novadent/novadent_backend/pkg/store"
)

// requireSession pulls the caller-scoped store session the auth
// middleware put in locals. Missing means the route was wired without
// AuthRequired, which is a bug, but answer 401 rather than panic.
func requireSession(c fiber.Ctx) (*store.Session, error) {
	db, ok := middleware.SessionFromFiber(c)
	if !ok {
		return nil, unauthorized(c)
	}
	return db, nil
}

func requirePrincipal(c fiber.Ctx) (*reqctx.Principal, error) {
	p, ok := middleware.PrincipalFromFiber(c)
	if !ok {
		return nil, unauthorized(c)
	}
	return p, nil
}

// storeError translates a failed store round-trip. Errors the store
// attributes to the request keep their message; everything else is an
// opaque 500.
func storeError(c fiber.Ctx, err error) error {
	if store.IsForbidden(err) {
		return forbidden(c, store.UpstreamMessage(err))
	}
	var se *store.Error
	if errors.As(err, &se) && se.StatusCode < fiber.StatusInternalServerError {
		return badRequest(c, store.UpstreamMessage(err))
	}
	return internalError(c)
}
