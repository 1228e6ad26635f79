package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/janlemon/chytrejim/internal/models"
	"github.com/janlemon/chytrejim/internal/onboarding"
)

var ErrProfileIncomplete = errors.New("profile incomplete")

// activityMultipliers maps activity levels to their TDEE multiplier. Also
// the source of truth for which levels exist.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

func IsActivityLevel(level string) bool {
	_, ok := activityMultipliers[level]
	return ok
}

type targetsProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type targetsWriter interface {
	Save(ctx context.Context, targets *models.Targets) error
}

type TargetsService struct {
	profileRepo targetsProfileReader
	targetsRepo targetsWriter
	now         func() time.Time
}

func NewTargetsService(profileRepo targetsProfileReader, targetsRepo targetsWriter) *TargetsService {
	return &TargetsService{
		profileRepo: profileRepo,
		targetsRepo: targetsRepo,
		now:         time.Now,
	}
}

// ComputeAndSave derives daily targets from the persisted profile and stores
// them. BMR is Mifflin-St Jeor; unknown gender gets the midpoint offset and
// missing height/age fall back to population defaults, but weight and
// activity level must be present.
func (s *TargetsService) ComputeAndSave(ctx context.Context, userID int64, stepsTarget int) (*models.Targets, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.InitialWeightKG == nil || profile.ActivityLevel == nil {
		return nil, ErrProfileIncomplete
	}
	multiplier, ok := activityMultipliers[*profile.ActivityLevel]
	if !ok {
		return nil, ErrProfileIncomplete
	}

	weight := *profile.InitialWeightKG

	gender := ""
	if profile.Gender != nil {
		gender = *profile.Gender
	}

	height := fallbackHeight(gender)
	if profile.HeightCM != nil {
		height = *profile.HeightCM
	}

	age := 30
	if profile.BirthDate != nil {
		if a, ok := onboarding.AgeOn(*profile.BirthDate, s.now()); ok {
			age = a
		}
	}

	bmr := 10*weight + 6.25*height - 5*float64(age)
	switch gender {
	case "male":
		bmr += 5
	case "female":
		bmr -= 161
	default:
		bmr -= 78
	}

	kcal := bmr * multiplier
	if profile.Goal != nil {
		switch *profile.Goal {
		case "lose":
			kcal *= 0.85
		case "gain":
			kcal *= 1.10
		}
	}

	targets := &models.Targets{
		UserID:         userID,
		KcalTarget:     math.Round(kcal),
		ProteinGTarget: math.Round(1.6 * weight),
		StepsTarget:    stepsTarget,
	}
	if err := s.targetsRepo.Save(ctx, targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func fallbackHeight(gender string) float64 {
	switch gender {
	case "male":
		return 170
	case "female":
		return 165
	default:
		return 168
	}
}

var activityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}

// SuggestActivityLevel maps the "help me choose" quiz (training days per
// week, kind of work) to a level: the days bucket sets the base and manual
// work bumps it one step.
func SuggestActivityLevel(days, work string) string {
	base := 0
	switch days {
	case "d1_3":
		base = 1
	case "d3_5":
		base = 2
	case "d6_7":
		base = 3
	}
	if work == "manual" && base < len(activityLevels)-1 {
		base++
	}
	return activityLevels[base]
}
