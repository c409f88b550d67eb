// Package handlers serves the dashboard pages.
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"caredash/internal/config"
	"caredash/internal/validation"
)

// anonymousScope is used when no session is attached to the request.
const anonymousScope = "anonymous"

const sessionStarted = "started_at"

// SessionScope returns the memo scope for the request's session. A fresh
// session is marked so its cookie is stored and the scope survives the next request.
func SessionScope(c fiber.Ctx) string {
	sess := session.FromContext(c)
	if sess == nil || sess.ID() == "" {
		return anonymousScope
	}
	if sess.Fresh() {
		sess.Set(sessionStarted, time.Now().Unix())
	}
	return sess.ID()
}

// ReferenceDate returns the day the dashboard reports on. A ?date=YYYY-MM-DD
// query parameter overrides the configured date.
func ReferenceDate(c fiber.Ctx, cfg *config.Config, now time.Time) (time.Time, error) {
	if q := c.Query("date"); q != "" {
		d, err := validation.ParseDate(q)
		if err != nil {
			return time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return d, nil
	}
	return cfg.ReferenceDate(now), nil
}
