package models

import "time"

// Profile mirrors one row of the profiles table. Every answer collected during
// onboarding is nullable: a partial earlier run may have persisted any subset.
type Profile struct {
	UserID                int64      `json:"user_id"`
	FirstName             *string    `json:"first_name"`
	LastName              *string    `json:"last_name"`
	Gender                *string    `json:"gender"`
	BirthDate             *string    `json:"birth_date"`
	HeightCM              *float64   `json:"height_cm"`
	InitialWeightKG       *float64   `json:"initial_weight_kg"`
	ActivityLevel         *string    `json:"activity_level"`
	Goal                  *string    `json:"goal"`
	DietaryFlags          *[]string  `json:"dietary_flags"`
	ConsentTermsAt        *time.Time `json:"consent_terms_at"`
	ConsentPrivacyAt      *time.Time `json:"consent_privacy_at"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Preferences keeps the distinction between "explicitly none" and "unknown":
// allergens persist as an array even when empty, cuisines persist as NULL
// when empty.
type Preferences struct {
	UserID    int64     `json:"user_id"`
	Cuisines  *[]string `json:"cuisines"`
	Allergens []string  `json:"allergens"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Targets struct {
	UserID         int64     `json:"user_id"`
	KcalTarget     float64   `json:"kcal_target"`
	ProteinGTarget float64   `json:"protein_g_target"`
	StepsTarget    int       `json:"steps_target"`
	UpdatedAt      time.Time `json:"updated_at"`
}
