package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, limit, offset int) (*model.Page[*model.Clinic], error)
	}

	UserRepository interface {
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
	}

	// DoctorRepository persists a doctor together with its owning user and clinic links.
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, limit, offset int) (*model.Page[*model.Doctor], error)
	}

	// PatientRepository persists a patient together with its owning user.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, limit, offset int) (*model.Page[*model.Patient], error)
	}

	ConsultationRepository interface {
		Create(ctx context.Context, consultation *model.Consultation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
		Update(ctx context.Context, consultation *model.Consultation) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, query *model.ConsultationQuery) (*model.Page[*model.Consultation], error)
	}
)
