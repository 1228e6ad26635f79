package onboarding

import (
	"strconv"
	"strings"
	"time"

	"github.com/janlemon/chytrejim/internal/models"
)

// ReviewViewModel is recomputed on every read from the draft and whatever
// remote state is available. It carries the resolved values the review screen
// renders plus the completeness verdict that gates the final commit.
type ReviewViewModel struct {
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	BirthDate     string   `json:"birth_date"`
	Gender        string   `json:"gender"`
	HeightCM      float64  `json:"height_cm"`
	WeightKG      float64  `json:"weight_kg"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
	DietaryFlags  []string `json:"dietary_flags"`
	Allergens     []string `json:"allergens"`
	Cuisines      []string `json:"cuisines"`

	ConsentTerms   bool `json:"consent_terms"`
	ConsentPrivacy bool `json:"consent_privacy"`

	AgeYears *int     `json:"age_years"`
	BMI      *float64 `json:"bmi"`

	RequiredMissing map[string]bool `json:"required_missing"`
	AnyMissing      bool            `json:"any_missing"`
	Sections        map[string]bool `json:"sections"`
	CanFinish       bool            `json:"can_finish"`
}

// Review resolves each field with draft-over-remote-over-default precedence
// and evaluates the required-fields checklist. Remote snapshots may be nil
// (fetch failed or nothing persisted yet); the review degrades to draft-only.
// Pure and side-effect free, safe to call on every render.
func Review(draft Draft, profile *models.Profile, prefs *models.Preferences, now time.Time) ReviewViewModel {
	vm := ReviewViewModel{
		FirstName:     resolve(draft.FirstName, profileString(profile, func(p *models.Profile) *string { return p.FirstName })),
		LastName:      resolve(draft.LastName, profileString(profile, func(p *models.Profile) *string { return p.LastName })),
		BirthDate:     resolve(draft.BirthDate, profileString(profile, func(p *models.Profile) *string { return p.BirthDate })),
		Gender:        resolve(draft.Gender, profileString(profile, func(p *models.Profile) *string { return p.Gender })),
		ActivityLevel: resolve(draft.ActivityLevel, profileString(profile, func(p *models.Profile) *string { return p.ActivityLevel })),
		Goal:          resolve(draft.Goal, profileString(profile, func(p *models.Profile) *string { return p.Goal })),
	}

	vm.HeightCM = resolveNumber(draft.Height, profileFloat(profile, func(p *models.Profile) *float64 { return p.HeightCM }))
	vm.WeightKG = resolveNumber(draft.Weight, profileFloat(profile, func(p *models.Profile) *float64 { return p.InitialWeightKG }))

	vm.DietaryFlags = resolveSet(draft.DietaryFlags, profileFlags(profile))
	vm.Allergens = resolveSet(draft.Allergens, prefsAllergens(prefs))
	vm.Cuisines = resolveSet(draft.Cuisines, prefsCuisines(prefs))

	vm.ConsentTerms = draft.ConsentTerms || (profile != nil && profile.ConsentTermsAt != nil)
	vm.ConsentPrivacy = draft.ConsentPrivacy || (profile != nil && profile.ConsentPrivacyAt != nil)

	if age, ok := AgeOn(vm.BirthDate, now); ok {
		vm.AgeYears = &age
	}
	if bmi, ok := BMI(vm.HeightCM, vm.WeightKG); ok {
		vm.BMI = &bmi
	}

	vm.RequiredMissing = map[string]bool{
		"birth_date": vm.BirthDate == "",
		"gender":     vm.Gender == "",
		"height":     vm.HeightCM == 0,
		"weight":     vm.WeightKG == 0,
		"activity":   vm.ActivityLevel == "",
		"goal":       vm.Goal == "",
		"consent":    !vm.ConsentTerms || !vm.ConsentPrivacy,
	}
	for _, missing := range vm.RequiredMissing {
		if missing {
			vm.AnyMissing = true
			break
		}
	}

	// Per-section completeness is a UI affordance only; the commit gate is
	// AnyMissing plus the age bound below.
	vm.Sections = map[string]bool{
		"profile":   !vm.RequiredMissing["birth_date"] && !vm.RequiredMissing["gender"],
		"body":      !vm.RequiredMissing["height"] && !vm.RequiredMissing["weight"],
		"lifestyle": !vm.RequiredMissing["activity"] && !vm.RequiredMissing["goal"],
		"consent":   !vm.RequiredMissing["consent"],
	}

	vm.CanFinish = !vm.AnyMissing &&
		(vm.AgeYears == nil || (*vm.AgeYears >= MinAge && *vm.AgeYears <= MaxAge))

	return vm
}

func resolve(draftValue string, remoteValue string) string {
	if draftValue != "" {
		return draftValue
	}
	return remoteValue
}

// resolveNumber mirrors the review screen's loose numeric coercion: the
// draft string wins when it parses to a non-zero number, strict range
// checking already happened at the collecting step.
func resolveNumber(draftValue string, remoteValue float64) float64 {
	if draftValue != "" {
		if n, err := strconv.ParseFloat(normalizeDecimal(draftValue), 64); err == nil && n != 0 {
			return n
		}
	}
	return remoteValue
}

func normalizeDecimal(s string) string {
	cleaned := nonWeightChars.ReplaceAllString(s, "")
	if idx := separators.FindStringIndex(cleaned); idx != nil {
		head := cleaned[:idx[1]]
		tail := separators.ReplaceAllString(cleaned[idx[1]:], "")
		cleaned = head + tail
	}
	return strings.Replace(cleaned, ",", ".", 1)
}

func resolveSet(draftSet []string, remoteSet []string) []string {
	if len(draftSet) > 0 {
		return draftSet
	}
	if len(remoteSet) > 0 {
		return remoteSet
	}
	return []string{}
}

func profileString(p *models.Profile, pick func(*models.Profile) *string) string {
	if p == nil {
		return ""
	}
	if v := pick(p); v != nil {
		return *v
	}
	return ""
}

func profileFloat(p *models.Profile, pick func(*models.Profile) *float64) float64 {
	if p == nil {
		return 0
	}
	if v := pick(p); v != nil {
		return *v
	}
	return 0
}

func profileFlags(p *models.Profile) []string {
	if p == nil || p.DietaryFlags == nil {
		return nil
	}
	return *p.DietaryFlags
}

func prefsAllergens(p *models.Preferences) []string {
	if p == nil {
		return nil
	}
	return p.Allergens
}

func prefsCuisines(p *models.Preferences) []string {
	if p == nil || p.Cuisines == nil {
		return nil
	}
	return *p.Cuisines
}
