package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/janlemon/chytrejim/internal/catalog"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

type catalogItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// List returns the full catalog for a kind with labels in the requested
// language.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	kind := c.Params("kind")
	entries, ok := catalog.Entries(kind)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown catalog"})
	}
	lang := normalizeLang(c.Query("lang"))

	items := make([]catalogItem, len(entries))
	for i, e := range entries {
		items[i] = catalogItem{Code: e.Code, Label: catalog.Label(e.Code, lang)}
	}
	return c.JSON(fiber.Map{"items": items})
}

// Suggest powers the search field on the diet step: scored catalog matches
// first, and when the query matches nothing, the client offers to add it as
// a custom code.
func (h *CatalogHandler) Suggest(c *fiber.Ctx) error {
	kind := c.Params("kind")
	if _, ok := catalog.Entries(kind); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown catalog"})
	}
	lang := normalizeLang(c.Query("lang"))
	query := c.Query("q")

	var selected []string
	if raw := c.Query("selected"); raw != "" {
		selected = strings.Split(raw, ",")
	}

	codes := catalog.Suggest(kind, query, lang, selected)
	items := make([]catalogItem, len(codes))
	for i, code := range codes {
		items[i] = catalogItem{Code: code, Label: catalog.Label(code, lang)}
	}

	body := fiber.Map{"items": items}
	if custom := catalog.CustomCode(query); custom != "" && len(items) == 0 {
		body["custom"] = catalogItem{Code: custom, Label: catalog.Label(custom, lang)}
	}
	return c.JSON(body)
}

func normalizeLang(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "cs") {
		return "cs"
	}
	return "en"
}
