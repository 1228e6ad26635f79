package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/janlemon/chytrejim/internal/models"
)

type PreferencesRepository struct {
	db DBTX
}

func NewPreferencesRepository(db DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) GetByUserID(ctx context.Context, userID int64) (*models.Preferences, error) {
	query := `
		SELECT user_id, cuisines, allergens, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`
	var prefs models.Preferences
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&prefs.UserID, &prefs.Cuisines, &prefs.Allergens, &prefs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Upsert persists allergens as an array even when empty ("explicitly none")
// while empty cuisines persist as NULL ("unknown"). Callers pass exactly
// those shapes; the repository does not second-guess them.
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *models.Preferences) error {
	query := `
		INSERT INTO user_preferences (user_id, cuisines, allergens, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			cuisines = EXCLUDED.cuisines,
			allergens = EXCLUDED.allergens,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, prefs.UserID, prefs.Cuisines, prefs.Allergens)
	return err
}
