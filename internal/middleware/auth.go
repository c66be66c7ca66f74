package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/snapform/snapform-api/internal/services"
	"github.com/snapform/snapform-api/internal/types"
	"gorm.io/gorm"
)

const (
	sessionCookie = "cookie_session"
	actorKey      = "actor"
)

// Authenticator resolves the session cookie to a stored user.
type Authenticator struct {
	DB       *gorm.DB
	Sessions services.SessionValidator
	Roles    services.RoleResolver
}

// AuthUser validates the session and makes the caller available to
// handlers through GetActor
func (a *Authenticator) AuthUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return a.authorize(c, "authorization.user", nil)
	}
}

// AuthAdmin additionally requires the ADMIN or SUPER_ADMIN role
func (a *Authenticator) AuthAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return a.authorize(c, "authorization.admin", func(actor services.Actor) bool {
			return actor.Role.IsAdmin()
		})
	}
}

// authorize performs the authorization check
func (a *Authenticator) authorize(c *fiber.Ctx, errorType string, allow func(services.Actor) bool) error {
	// Get session cookie
	session := c.Cookies(sessionCookie)
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Authorizer cookie %q not found", sessionCookie),
			Type:    errorType,
		}
	}

	// Validate session
	identity, err := a.Sessions.ValidateSession(session)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	user, err := services.EnsureUser(c.UserContext(), a.DB, a.Roles, *identity)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to load user",
			Type:    errorType,
		}
	}

	actor := services.Actor{ID: user.ID, Email: user.Email, Role: user.Role}
	if allow != nil && !allow(actor) {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Forbidden",
			Type:    errorType,
		}
	}

	c.Locals(actorKey, actor)
	return c.Next()
}

// GetActor returns the caller set by the auth middleware
func GetActor(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(actorKey).(services.Actor)
	return actor, ok
}
