package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/janlemon/chytrejim/internal/models"
	"github.com/janlemon/chytrejim/internal/services"
)

type targetsReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Targets, error)
}

type targetsRecomputer interface {
	ComputeAndSave(ctx context.Context, userID int64, stepsTarget int) (*models.Targets, error)
}

type TargetsHandler struct {
	targetsRepo        targetsReader
	targetsService     targetsRecomputer
	defaultStepsTarget int
}

func NewTargetsHandler(targetsRepo targetsReader, targetsService targetsRecomputer, defaultStepsTarget int) *TargetsHandler {
	return &TargetsHandler{
		targetsRepo:        targetsRepo,
		targetsService:     targetsService,
		defaultStepsTarget: defaultStepsTarget,
	}
}

// GetTargets returns stored targets, computing them on first access the way
// the dashboard does when a user lands there before any were saved.
func (h *TargetsHandler) GetTargets(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	targets, err := h.targetsRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch targets"})
	}
	if targets == nil {
		targets, err = h.targetsService.ComputeAndSave(c.Context(), userID, h.defaultStepsTarget)
		if errors.Is(err, services.ErrProfileIncomplete) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Targets not available yet"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute targets"})
		}
	}

	return c.JSON(fiber.Map{"targets": targets})
}

type recomputeTargetsRequest struct {
	StepsTarget int `json:"steps_target"`
}

func (h *TargetsHandler) RecomputeTargets(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req recomputeTargetsRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	steps := req.StepsTarget
	if steps <= 0 {
		steps = h.defaultStepsTarget
	}

	targets, err := h.targetsService.ComputeAndSave(c.Context(), userID, steps)
	if err != nil {
		if errors.Is(err, services.ErrProfileIncomplete) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Profile is missing weight or activity level"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute targets"})
	}

	return c.JSON(fiber.Map{"targets": targets})
}
