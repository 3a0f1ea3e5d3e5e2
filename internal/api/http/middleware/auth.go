package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/novadent/novadent_backend/pkg/identity"
	"github.com/novadent/novadent_backend/pkg/reqctx"
	"github.com/novadent/novadent_backend/pkg/store"
)

const (
	LocalPrincipal = "principal"
	LocalDBSession = "db_session"
)

// AuthRequired verifies the Bearer access token locally against the
// identity provider's signing secret, then binds a store session under
// that same token so row-level security evaluates as the caller.
// On success, c.Locals carries a *reqctx.Principal and a *store.Session.
func AuthRequired(idp *identity.Client, st *store.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}
		token := strings.TrimSpace(parts[1])

		claims, err := idp.VerifyToken(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		userID, err := claims.UserID()
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(LocalPrincipal, &reqctx.Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Locals(LocalDBSession, st.WithToken(token))
		return c.Next()
	}
}

// AuthOptional binds the caller's identity and store session when a
// valid Bearer token is present and silently continues anonymous
// otherwise. Used on the public outreach form so signed-in staff still
// get attributed as the row creator.
func AuthOptional(idp *identity.Client, st *store.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Next()
		}
		token := strings.TrimSpace(parts[1])

		claims, err := idp.VerifyToken(token)
		if err != nil {
			return c.Next()
		}
		userID, err := claims.UserID()
		if err != nil {
			return c.Next()
		}

		c.Locals(LocalPrincipal, &reqctx.Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		c.Locals(LocalDBSession, st.WithToken(token))
		return c.Next()
	}
}

// PrincipalFromFiber retrieves the verified caller from Fiber locals.
func PrincipalFromFiber(c fiber.Ctx) (*reqctx.Principal, bool) {
	p, ok := c.Locals(LocalPrincipal).(*reqctx.Principal)
	return p, ok && p != nil
}

// SessionFromFiber retrieves the caller-scoped store session.
func SessionFromFiber(c fiber.Ctx) (*store.Session, bool) {
	s, ok := c.Locals(LocalDBSession).(*store.Session)
	return s, ok && s != nil
}
