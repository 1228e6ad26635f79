package handlers

import (
	"time"

	"github.com/janlemon/chytrejim/internal/onboarding"
	"github.com/janlemon/chytrejim/internal/services"
)

var allowedGenders = map[string]struct{}{
	"male":              {},
	"female":            {},
	"prefer_not_to_say": {},
}

var allowedGoals = map[string]struct{}{
	"lose":     {},
	"maintain": {},
	"gain":     {},
	"explore":  {},
}

// validateDraftUpdateRequest rejects only values the wizard can never send.
// Free-text fields (birth date, height, weight) are accepted as typed; their
// problems come back as field hints, not request errors.
func validateDraftUpdateRequest(req draftUpdateRequest) string {
	if req.Gender != nil && *req.Gender != "" {
		if msg := validateGender(*req.Gender); msg != "" {
			return msg
		}
	}
	if req.ActivityLevel != nil && *req.ActivityLevel != "" {
		if msg := validateActivityLevel(*req.ActivityLevel); msg != "" {
			return msg
		}
	}
	if req.Goal != nil && *req.Goal != "" {
		if msg := validateGoal(*req.Goal); msg != "" {
			return msg
		}
	}
	return ""
}

func validateGender(gender string) string {
	if _, ok := allowedGenders[gender]; !ok {
		return "gender must be one of: male, female, prefer_not_to_say"
	}
	return ""
}

func validateActivityLevel(level string) string {
	if !services.IsActivityLevel(level) {
		return "activity_level must be one of: sedentary, light, moderate, active, very_active"
	}
	return ""
}

func validateGoal(goal string) string {
	if _, ok := allowedGoals[goal]; !ok {
		return "goal must be one of: lose, maintain, gain, explore"
	}
	return ""
}

// draftFieldErrors turns validator verdicts into the per-field hints shown
// next to each input. Empty fields produce no hint.
func draftFieldErrors(draft onboarding.Draft) map[string]string {
	hints := make(map[string]string)

	switch err := onboarding.ValidateBirthDate(draft.BirthDate, time.Now()); err {
	case nil, onboarding.ErrNotProvided:
	case onboarding.ErrRange:
		hints["birth_date"] = "age must be between 13 and 100"
	default:
		hints["birth_date"] = "birth date must be a valid YYYY-MM-DD date"
	}

	if _, err := onboarding.ParseHeight(draft.Height); err != nil && err != onboarding.ErrNotProvided {
		hints["height"] = "height must be between 120 and 250 cm"
	}
	if _, err := onboarding.ParseWeight(draft.Weight); err != nil && err != onboarding.ErrNotProvided {
		hints["weight"] = "weight must be between 35 and 300 kg"
	}

	return hints
}
