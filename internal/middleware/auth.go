package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"caredash/internal/config"
	"caredash/internal/handlers"
	"caredash/internal/models"
)

// AuthMiddleware loads the signed-in caretaker from the session.
type AuthMiddleware struct {
	cfg *config.Config
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// RequireAuth ensures the caretaker is signed in. Without OIDC every visitor
// is treated as the configured caretaker. Pages redirect to /login, API
// routes answer 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if !m.cfg.IsOIDCEnabled() {
		c.Locals("user", &models.User{Name: m.cfg.CaretakerName})
		return c.Next()
	}

	user := userFromSession(c)
	if user == nil {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error",
				"error":  "unauthorized",
			})
		}
		handlers.RememberRedirect(c)
		return c.Redirect().To("/login")
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := userFromSession(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

func userFromSession(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}

	sub, _ := sess.Get(handlers.SessionUserSub).(string)
	if sub == "" {
		return nil
	}
	name, _ := sess.Get(handlers.SessionUserName).(string)
	email, _ := sess.Get(handlers.SessionUserEmail).(string)

	return &models.User{Sub: sub, Name: name, Email: email}
}
