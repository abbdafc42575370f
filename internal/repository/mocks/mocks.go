// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type ClinicRepository struct {
	mock.Mock
}

func (m *ClinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *ClinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Clinic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *ClinicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ClinicRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Clinic], error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.(*model.Page[*model.Clinic]), args.Error(1)
	}
	return nil, args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

type DoctorRepository struct {
	mock.Mock
}

func (m *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DoctorRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Doctor], error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.(*model.Page[*model.Doctor]), args.Error(1)
	}
	return nil, args.Error(1)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, limit, offset int) (*model.Page[*model.Patient], error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.(*model.Page[*model.Patient]), args.Error(1)
	}
	return nil, args.Error(1)
}

type ConsultationRepository struct {
	mock.Mock
}

func (m *ConsultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	return m.Called(ctx, consultation).Error(0)
}

func (m *ConsultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Consultation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConsultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	return m.Called(ctx, consultation).Error(0)
}

func (m *ConsultationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ConsultationRepository) List(ctx context.Context, query *model.ConsultationQuery) (*model.Page[*model.Consultation], error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*model.Page[*model.Consultation]), args.Error(1)
	}
	return nil, args.Error(1)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return m.Called(ctx, eventType, payload).Error(0)
}
