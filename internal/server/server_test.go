package server

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caredash/internal/handlers"
)

// TestSessionScopeSurvivesEncryptedCookies replays the encrypted session
// cookie and checks the memo scope stays the same, otherwise every page
// view would query the warehouse again.
func TestSessionScopeSurvivesEncryptedCookies(t *testing.T) {
	app := fiber.New()
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-secret-that-is-long-enough-for-production"),
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/visit", func(c fiber.Ctx) error {
		session.FromContext(c).Set("visited", true)
		return c.SendString(handlers.SessionScope(c))
	})
	app.Get("/scope", func(c fiber.Ctx) error {
		return c.SendString(handlers.SessionScope(c))
	})

	resp, err := app.Test(httpRequest(http.MethodPost, "/visit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	first := readBody(t, resp)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.NotEqual(t, "anonymous", first)

	for i := 0; i < 2; i++ {
		resp, err = app.Test(httpRequest(http.MethodGet, "/scope", cookies))
		require.NoError(t, err, "request %d", i)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, first, readBody(t, resp))
		if c := resp.Cookies(); len(c) > 0 {
			cookies = c
		}
	}
}

func TestDeriveEncryptionKeyIsStable(t *testing.T) {
	a := deriveEncryptionKey("secret-one")
	assert.Equal(t, a, deriveEncryptionKey("secret-one"))
	assert.NotEqual(t, a, deriveEncryptionKey("secret-two"))
	// 32 bytes, base64 encoded
	assert.Len(t, a, 44)
}

func httpRequest(method, path string, cookies []*http.Cookie) *http.Request {
	req, _ := http.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
