package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/janlemon/chytrejim/internal/models"
)

type profileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type preferencesReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Preferences, error)
}

type ProfileHandler struct {
	profileRepo     profileReader
	preferencesRepo preferencesReader
}

func NewProfileHandler(profileRepo profileReader, preferencesRepo preferencesReader) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, preferencesRepo: preferencesRepo}
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile"})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	prefs, err := h.preferencesRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch preferences"})
	}
	if prefs == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Preferences not found"})
	}

	return c.JSON(fiber.Map{"preferences": prefs})
}
