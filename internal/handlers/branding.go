package handlers

import (
	"html/template"

	"github.com/gofiber/fiber/v3"

	"caredash/internal/assets"
	"caredash/internal/config"
	"caredash/internal/models"
)

// Page is a navigation entry in the sidebar.
type Page struct {
	Path string
	Name string
}

// Pages lists the dashboard pages in sidebar order.
var Pages = []Page{
	{Path: "/", Name: "Pflege Dashboard"},
	{Path: "/forecast", Name: "Wochen Empfehlungen"},
	{Path: "/resident", Name: "Bewohner Dashboard"},
}

// BrandingData contains site branding information for templates.
type BrandingData struct {
	SiteTitle     string
	LogoURI       template.URL
	BackgroundURI template.URL
	OIDCEnabled   bool
}

// LoadBranding reads the logo and background images once so every page can
// inline them.
func LoadBranding(cfg *config.Config) (BrandingData, error) {
	logo, err := assets.Optional(cfg.SiteLogoFile)
	if err != nil {
		return BrandingData{}, err
	}
	background, err := assets.Optional(cfg.SiteBackgroundFile)
	if err != nil {
		return BrandingData{}, err
	}
	return BrandingData{
		SiteTitle:     cfg.SiteTitle,
		LogoURI:       logo,
		BackgroundURI: background,
		OIDCEnabled:   cfg.IsOIDCEnabled(),
	}, nil
}

// MergeBranding adds branding and navigation data to a fiber.Map for template rendering.
func MergeBranding(c fiber.Ctx, data fiber.Map, branding BrandingData) fiber.Map {
	data["SiteTitle"] = branding.SiteTitle
	data["LogoURI"] = branding.LogoURI
	data["BackgroundURI"] = branding.BackgroundURI
	data["OIDCEnabled"] = branding.OIDCEnabled
	data["Pages"] = Pages
	data["CurrentPath"] = c.Path()
	data["CurrentURL"] = c.OriginalURL()
	data["CurrentPage"] = pageName(c.Path())
	if user, ok := c.Locals("user").(*models.User); ok {
		data["User"] = user
	}
	return data
}

func pageName(path string) string {
	for _, p := range Pages {
		if p.Path == path {
			return p.Name
		}
	}
	return ""
}
