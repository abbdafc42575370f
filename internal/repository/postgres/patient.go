package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

type patientRow struct {
	model.Patient
	U model.User `db:"u"`
}

func (row *patientRow) toModel() *model.Patient {
	p := row.Patient
	p.User = row.U
	return &p
}

var patientSelect = `
	SELECT p.id, p.user_id, p.phone, p.created_at, p.updated_at, ` + userColumns("u", "u") + `
	FROM patients p
	JOIN users u ON u.id = p.user_id
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	if patient.User.ID == uuid.Nil {
		patient.User.ID = uuid.New()
	}
	patient.UserID = patient.User.ID
	patient.User.Role = model.RolePatient
	patient.CreatedAt = r.timestamp()
	patient.UpdatedAt = patient.CreatedAt
	patient.User.CreatedAt = patient.CreatedAt
	patient.User.UpdatedAt = patient.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, &patient.User); err != nil {
			return err
		}

		query := `
			INSERT INTO patients (id, user_id, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		_, err := tx.ExecContext(ctx, query,
			patient.ID,
			patient.UserID,
			patient.Phone,
			patient.CreatedAt,
			patient.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create patient: %w", mapError(err, "patient"))
		}
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var row patientRow
	if err := r.db.GetContext(ctx, &row, patientSelect+` WHERE p.id = $1 AND u.role = $2`, id, model.RolePatient); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err, "patient"))
	}
	return row.toModel(), nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = r.timestamp()
	patient.User.UpdatedAt = patient.UpdatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE patients SET phone = $1, updated_at = $2 WHERE id = $3`,
			patient.Phone,
			patient.UpdatedAt,
			patient.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update patient: %w", mapError(err, "patient"))
		}
		if err := expectAffected(result, "patient"); err != nil {
			return err
		}
		return updateUser(ctx, tx, &patient.User)
	})
}

// Delete removes the patient's user; the patient row cascades.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = (SELECT user_id FROM patients WHERE id = $1)`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", mapError(err, "patient"))
	}
	return expectAffected(result, "patient")
}

func (r *patientRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Patient], error) {
	page := &model.Page[*model.Patient]{Items: []*model.Patient{}}

	countQuery := `SELECT COUNT(*) FROM patients p JOIN users u ON u.id = p.user_id WHERE u.role = $1`
	if err := r.db.GetContext(ctx, &page.Total, countQuery, model.RolePatient); err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}

	var rows []patientRow
	query := patientSelect + ` WHERE u.role = $1 ORDER BY u.last_name, u.first_name, p.id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, model.RolePatient, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	for i := range rows {
		page.Items = append(page.Items, rows[i].toModel())
	}
	return page, nil
}
