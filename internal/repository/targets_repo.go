package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/janlemon/chytrejim/internal/models"
)

type TargetsRepository struct {
	db DBTX
}

func NewTargetsRepository(db DBTX) *TargetsRepository {
	return &TargetsRepository{db: db}
}

func (r *TargetsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Targets, error) {
	query := `
		SELECT user_id, kcal_target, protein_g_target, steps_target, updated_at
		FROM targets
		WHERE user_id = $1
	`
	var targets models.Targets
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&targets.UserID, &targets.KcalTarget, &targets.ProteinGTarget, &targets.StepsTarget, &targets.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &targets, nil
}

func (r *TargetsRepository) Save(ctx context.Context, targets *models.Targets) error {
	query := `
		INSERT INTO targets (user_id, kcal_target, protein_g_target, steps_target, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			kcal_target = EXCLUDED.kcal_target,
			protein_g_target = EXCLUDED.protein_g_target,
			steps_target = EXCLUDED.steps_target,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, targets.UserID, targets.KcalTarget, targets.ProteinGTarget, targets.StepsTarget)
	return err
}
