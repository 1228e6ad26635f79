package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/janlemon/chytrejim/internal/models"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID returns (nil, nil) when no row exists yet: a missing profile
// is the normal state for a first onboarding run, not a failure.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `
		SELECT user_id, first_name, last_name, gender, birth_date, height_cm,
			   initial_weight_kg, activity_level, goal, dietary_flags,
			   consent_terms_at, consent_privacy_at, onboarding_completed_at,
			   created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Gender,
		&profile.BirthDate,
		&profile.HeightCM,
		&profile.InitialWeightKG,
		&profile.ActivityLevel,
		&profile.Goal,
		&profile.DietaryFlags,
		&profile.ConsentTermsAt,
		&profile.ConsentPrivacyAt,
		&profile.OnboardingCompletedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert writes the complete profile row keyed by user id.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, first_name, last_name, gender, birth_date,
			height_cm, initial_weight_kg, activity_level, goal, dietary_flags,
			consent_terms_at, consent_privacy_at, onboarding_completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			gender = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			height_cm = EXCLUDED.height_cm,
			initial_weight_kg = EXCLUDED.initial_weight_kg,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			dietary_flags = EXCLUDED.dietary_flags,
			consent_terms_at = EXCLUDED.consent_terms_at,
			consent_privacy_at = EXCLUDED.consent_privacy_at,
			onboarding_completed_at = EXCLUDED.onboarding_completed_at,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.LastName,
		profile.Gender,
		profile.BirthDate,
		profile.HeightCM,
		profile.InitialWeightKG,
		profile.ActivityLevel,
		profile.Goal,
		profile.DietaryFlags,
		profile.ConsentTermsAt,
		profile.ConsentPrivacyAt,
		profile.OnboardingCompletedAt,
	)
	return err
}

// Single-field upserts back the optimistic per-step saves: the wizard moves
// on while these run, so each touches exactly one column.

func (r *ProfileRepository) UpsertGender(ctx context.Context, userID int64, gender string) error {
	query := `
		INSERT INTO profiles (user_id, gender, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET gender = EXCLUDED.gender, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, userID, gender)
	return err
}

func (r *ProfileRepository) UpsertActivityLevel(ctx context.Context, userID int64, level string) error {
	query := `
		INSERT INTO profiles (user_id, activity_level, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET activity_level = EXCLUDED.activity_level, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, userID, level)
	return err
}

func (r *ProfileRepository) UpsertGoal(ctx context.Context, userID int64, goal *string) error {
	query := `
		INSERT INTO profiles (user_id, goal, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET goal = EXCLUDED.goal, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, userID, goal)
	return err
}
