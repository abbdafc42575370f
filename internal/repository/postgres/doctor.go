package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

type doctorRow struct {
	model.Doctor
	U model.User `db:"u"`
}

func (row *doctorRow) toModel() *model.Doctor {
	d := row.Doctor
	d.User = row.U
	d.Clinics = []uuid.UUID{}
	return &d
}

var doctorSelect = `
	SELECT d.id, d.user_id, d.specialization, d.phone, d.created_at, d.updated_at, ` + userColumns("u", "u") + `
	FROM doctors d
	JOIN users u ON u.id = d.user_id
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	if doctor.User.ID == uuid.Nil {
		doctor.User.ID = uuid.New()
	}
	doctor.UserID = doctor.User.ID
	doctor.User.Role = model.RoleDoctor
	doctor.CreatedAt = r.timestamp()
	doctor.UpdatedAt = doctor.CreatedAt
	doctor.User.CreatedAt = doctor.CreatedAt
	doctor.User.UpdatedAt = doctor.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, &doctor.User); err != nil {
			return err
		}

		query := `
			INSERT INTO doctors (id, user_id, specialization, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.ExecContext(ctx, query,
			doctor.ID,
			doctor.UserID,
			doctor.Specialization,
			doctor.Phone,
			doctor.CreatedAt,
			doctor.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create doctor: %w", mapError(err, "doctor"))
		}

		return setDoctorClinics(ctx, tx, doctor.ID, doctor.Clinics)
	})
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var row doctorRow
	if err := r.db.GetContext(ctx, &row, doctorSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", mapError(err, "doctor"))
	}

	doctor := row.toModel()
	if err := r.loadClinics(ctx, []*model.Doctor{doctor}); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	doctor.UpdatedAt = r.timestamp()
	doctor.User.UpdatedAt = doctor.UpdatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE doctors
			SET specialization = $1, phone = $2, updated_at = $3
			WHERE id = $4
		`
		result, err := tx.ExecContext(ctx, query,
			doctor.Specialization,
			doctor.Phone,
			doctor.UpdatedAt,
			doctor.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update doctor: %w", mapError(err, "doctor"))
		}
		if err := expectAffected(result, "doctor"); err != nil {
			return err
		}

		if err := updateUser(ctx, tx, &doctor.User); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM doctor_clinics WHERE doctor_id = $1`, doctor.ID); err != nil {
			return fmt.Errorf("failed to clear doctor clinics: %w", err)
		}
		return setDoctorClinics(ctx, tx, doctor.ID, doctor.Clinics)
	})
}

// Delete removes the doctor's user; the doctor row and its clinic links cascade.
func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = (SELECT user_id FROM doctors WHERE id = $1)`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", mapError(err, "doctor"))
	}
	return expectAffected(result, "doctor")
}

func (r *doctorRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Doctor], error) {
	page := &model.Page[*model.Doctor]{Items: []*model.Doctor{}}

	if err := r.db.GetContext(ctx, &page.Total, `SELECT COUNT(*) FROM doctors`); err != nil {
		return nil, fmt.Errorf("failed to count doctors: %w", err)
	}

	var rows []doctorRow
	query := doctorSelect + ` ORDER BY u.last_name, u.first_name, d.id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	for i := range rows {
		page.Items = append(page.Items, rows[i].toModel())
	}
	if err := r.loadClinics(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *doctorRepository) loadClinics(ctx context.Context, doctors []*model.Doctor) error {
	if len(doctors) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Doctor, len(doctors))
	ids := make(pq.StringArray, 0, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
		ids = append(ids, d.ID.String())
	}

	var links []struct {
		DoctorID uuid.UUID `db:"doctor_id"`
		ClinicID uuid.UUID `db:"clinic_id"`
	}
	query := `
		SELECT doctor_id, clinic_id
		FROM doctor_clinics
		WHERE doctor_id = ANY($1::uuid[])
		ORDER BY clinic_id
	`
	if err := r.db.SelectContext(ctx, &links, query, ids); err != nil {
		return fmt.Errorf("failed to load doctor clinics: %w", err)
	}

	for _, l := range links {
		if d, ok := byID[l.DoctorID]; ok {
			d.Clinics = append(d.Clinics, l.ClinicID)
		}
	}
	return nil
}

func setDoctorClinics(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, clinics []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(clinics))
	for _, clinicID := range clinics {
		if seen[clinicID] {
			continue
		}
		seen[clinicID] = true

		_, err := tx.ExecContext(ctx,
			`INSERT INTO doctor_clinics (doctor_id, clinic_id) VALUES ($1, $2)`,
			doctorID, clinicID,
		)
		if err != nil {
			return fmt.Errorf("failed to link doctor clinic: %w", mapError(err, "doctor"))
		}
	}
	return nil
}
