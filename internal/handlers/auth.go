package handlers

import (
	"context"
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"caredash/internal/config"
)

// Session keys holding the signed-in caretaker.
const (
	SessionUserSub   = "user_sub"
	SessionUserName  = "user_name"
	SessionUserEmail = "user_email"

	sessionOAuthState = "oauth_state"
	sessionRedirect   = "redirect_after_login"
)

// AuthHandler handles OIDC authentication flows.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	cfg          *config.Config
}

// NewAuthHandler creates a new auth handler with OIDC configuration.
func NewAuthHandler(ctx context.Context, cfg *config.Config) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &AuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
		cfg:          cfg,
	}, nil
}

// LoginPage renders the sign-in prompt.
func LoginPage(branding BrandingData) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.Render("login", MergeBranding(c, fiber.Map{"Title": "Anmeldung"}, branding))
	}
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state := uuid.NewString()
	sess.Set(sessionOAuthState, state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback handles the OIDC callback after authentication.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	savedState, _ := sess.Get(sessionOAuthState).(string)
	if savedState == "" || savedState != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete(sessionOAuthState)

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return err
	}

	// Some providers only put the subject in the ID token
	if claims.Name == "" || claims.Email == "" {
		userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
		if err != nil {
			log.Printf("Warning: Failed to fetch userinfo: %v", err)
		} else if err := userInfo.Claims(&claims); err != nil {
			log.Printf("Warning: Failed to decode userinfo claims: %v", err)
		}
	}

	if h.cfg.IsDev() {
		log.Printf("OIDC login: sub=%s email=%s", claims.Sub, claims.Email)
	}

	// Rotate the session ID so memoized results from before login are not reused
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(SessionUserSub, claims.Sub)
	sess.Set(SessionUserName, claims.Name)
	sess.Set(SessionUserEmail, claims.Email)

	redirectURL := "/"
	if saved, ok := sess.Get(sessionRedirect).(string); ok && pageName(saved) != "" {
		redirectURL = saved
	}
	sess.Delete(sessionRedirect)

	return c.Redirect().To(redirectURL)
}

// Logout clears the user session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("Warning: Failed to destroy session: %v", err)
		}
	}
	return c.Redirect().To("/resident")
}

// RememberRedirect stores the page to return to after login.
func RememberRedirect(c fiber.Ctx) {
	if sess := session.FromContext(c); sess != nil && pageName(c.Path()) != "" {
		sess.Set(sessionRedirect, c.Path())
	}
}
