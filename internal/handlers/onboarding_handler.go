package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/janlemon/chytrejim/internal/onboarding"
	"github.com/janlemon/chytrejim/internal/services"
)

type onboardingFlow interface {
	Draft(userID int64) onboarding.Draft
	UpdateDraft(userID int64, fn func(onboarding.Draft) onboarding.Draft) onboarding.Draft
	ResetDraft(userID int64)
	Review(ctx context.Context, userID int64) (onboarding.ReviewViewModel, string)
	Finish(ctx context.Context, userID int64) (onboarding.ReviewViewModel, error)
	SaveGender(ctx context.Context, userID int64, gender string)
	SaveActivity(ctx context.Context, userID int64, level string)
	SaveGoal(ctx context.Context, userID int64, goal string)
	LastSaveError(userID int64) string
}

type OnboardingHandler struct {
	flow onboardingFlow
}

func NewOnboardingHandler(flow onboardingFlow) *OnboardingHandler {
	return &OnboardingHandler{flow: flow}
}

type draftUpdateRequest struct {
	FirstName      *string   `json:"first_name"`
	LastName       *string   `json:"last_name"`
	BirthDate      *string   `json:"birth_date"`
	Gender         *string   `json:"gender"`
	Height         *string   `json:"height"`
	Weight         *string   `json:"weight"`
	ActivityLevel  *string   `json:"activity_level"`
	Goal           *string   `json:"goal"`
	DietaryFlags   *[]string `json:"dietary_flags"`
	Allergens      *[]string `json:"allergens"`
	Cuisines       *[]string `json:"cuisines"`
	ConsentTerms   *bool     `json:"consent_terms"`
	ConsentPrivacy *bool     `json:"consent_privacy"`
}

// UpdateDraft applies a partial draft update. Free-text fields are stored
// as entered and reported back with per-field hints (empty is "not yet
// provided", never an error); enum fields outside their catalog reject the
// request outright since the wizard cannot produce them.
func (h *OnboardingHandler) UpdateDraft(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req draftUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateDraftUpdateRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	draft := h.flow.UpdateDraft(userID, func(d onboarding.Draft) onboarding.Draft {
		if req.FirstName != nil {
			d = d.WithFirstName(*req.FirstName)
		}
		if req.LastName != nil {
			d = d.WithLastName(*req.LastName)
		}
		if req.BirthDate != nil {
			d = d.WithBirthDate(*req.BirthDate)
		}
		if req.Gender != nil {
			d = d.WithGender(*req.Gender)
		}
		if req.Height != nil {
			d = d.WithHeight(*req.Height)
		}
		if req.Weight != nil {
			d = d.WithWeight(*req.Weight)
		}
		if req.ActivityLevel != nil {
			d = d.WithActivity(*req.ActivityLevel)
		}
		if req.Goal != nil {
			d = d.WithGoal(*req.Goal)
		}
		if req.DietaryFlags != nil {
			d = d.WithDietaryFlags(*req.DietaryFlags)
		}
		if req.Allergens != nil {
			d = d.WithAllergens(*req.Allergens)
		}
		if req.Cuisines != nil {
			d = d.WithCuisines(*req.Cuisines)
		}
		if req.ConsentTerms != nil {
			d = d.WithConsentTerms(*req.ConsentTerms)
		}
		if req.ConsentPrivacy != nil {
			d = d.WithConsentPrivacy(*req.ConsentPrivacy)
		}
		return d
	})

	return c.JSON(fiber.Map{
		"draft":        draft,
		"field_errors": draftFieldErrors(draft),
	})
}

func (h *OnboardingHandler) GetDraft(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	draft := h.flow.Draft(userID)
	return c.JSON(fiber.Map{
		"draft":        draft,
		"field_errors": draftFieldErrors(draft),
	})
}

func (h *OnboardingHandler) ResetDraft(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	h.flow.ResetDraft(userID)
	return c.JSON(fiber.Map{"reset": true})
}

// Review recomputes the merged view on every call. A failed backend read
// degrades to draft-only data and shows up as a warning, never a failure.
func (h *OnboardingHandler) Review(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	vm, warning := h.flow.Review(c.Context(), userID)
	body := fiber.Map{"review": vm}
	if warning != "" {
		body["warning"] = warning
	}
	if msg := h.flow.LastSaveError(userID); msg != "" {
		body["save_error"] = msg
	}
	return c.JSON(body)
}

func (h *OnboardingHandler) Finish(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	vm, err := h.flow.Finish(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequiredMissing):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":            "Please fill all required fields",
				"required_missing": vm.RequiredMissing,
			})
		case errors.Is(err, services.ErrCommitInFlight):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Onboarding save already in progress"})
		case errors.Is(err, services.ErrNoUser):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No user"})
		default:
			// Draft is kept server-side; the client retries without
			// re-entering anything.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save onboarding, please try again"})
		}
	}

	return c.JSON(fiber.Map{
		"onboarded": true,
		"review":    vm,
	})
}

type stepSaveRequest struct {
	Gender        string `json:"gender"`
	ActivityLevel string `json:"activity_level"`
	Goal          string `json:"goal"`
}

// SaveGender, SaveActivity and SaveGoal are the optimistic per-step saves:
// the draft updates immediately, the remote write happens on the spot and a
// failure is reported back as a non-blocking save_error.

func (h *OnboardingHandler) SaveGender(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	var req stepSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateGender(req.Gender); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}
	h.flow.SaveGender(c.Context(), userID, req.Gender)
	return h.stepSaved(c, userID)
}

func (h *OnboardingHandler) SaveActivity(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	var req stepSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateActivityLevel(req.ActivityLevel); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}
	h.flow.SaveActivity(c.Context(), userID, req.ActivityLevel)
	return h.stepSaved(c, userID)
}

func (h *OnboardingHandler) SaveGoal(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	var req stepSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateGoal(req.Goal); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}
	h.flow.SaveGoal(c.Context(), userID, req.Goal)
	return h.stepSaved(c, userID)
}

func (h *OnboardingHandler) stepSaved(c *fiber.Ctx, userID int64) error {
	body := fiber.Map{"ok": true}
	if msg := h.flow.LastSaveError(userID); msg != "" {
		body["save_error"] = msg
	}
	return c.JSON(body)
}

type activitySuggestRequest struct {
	Days string `json:"days"`
	Work string `json:"work"`
}

// SuggestActivity answers the "not sure, help me choose" quiz.
func (h *OnboardingHandler) SuggestActivity(c *fiber.Ctx) error {
	var req activitySuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return c.JSON(fiber.Map{"activity_level": services.SuggestActivityLevel(req.Days, req.Work)})
}
