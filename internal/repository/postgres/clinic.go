package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

const clinicColumns = `id, name, legal_address, actual_address, created_at, updated_at`

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, legal_address, actual_address, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`
	clinic.CreatedAt = r.timestamp()
	clinic.UpdatedAt = clinic.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.LegalAddress,
		clinic.ActualAddress,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", mapError(err, "clinic"))
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`

	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", mapError(err, "clinic"))
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, legal_address = $2, actual_address = $3, updated_at = $4
		WHERE id = $5
	`
	clinic.UpdatedAt = r.timestamp()

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.LegalAddress,
		clinic.ActualAddress,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", mapError(err, "clinic"))
	}

	return expectAffected(result, "clinic")
}

func (r *clinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clinic: %w", mapError(err, "clinic"))
	}

	return expectAffected(result, "clinic")
}

func (r *clinicRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Clinic], error) {
	page := &model.Page[*model.Clinic]{Items: []*model.Clinic{}}

	if err := r.db.GetContext(ctx, &page.Total, `SELECT COUNT(*) FROM clinics`); err != nil {
		return nil, fmt.Errorf("failed to count clinics: %w", err)
	}

	query := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY name, id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &page.Items, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return page, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(result rowsAffecter, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound(resource, nil)
	}
	return nil
}
