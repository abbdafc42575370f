package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/user"
)

type DoctorServicer interface {
	CreateDoctor(ctx context.Context, req *model.DoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	ListDoctors(ctx context.Context, limit, offset int) (*model.Page[*model.Doctor], error)
}

type Service struct {
	repo    repository.DoctorRepository
	userSvc user.UserServicer
}

func NewService(repo repository.DoctorRepository, userSvc user.UserServicer) *Service {
	return &Service{
		repo:    repo,
		userSvc: userSvc,
	}
}

// CreateDoctor provisions the owning user and stores both records with the clinic links.
func (s *Service) CreateDoctor(ctx context.Context, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{Base: model.Base{ID: uuid.New()}}
	doctor.User.ID = uuid.New()
	doctor.User.Role = model.RoleDoctor

	if err := s.userSvc.Provision(ctx, &req.User, &doctor.User); err != nil {
		return nil, err
	}
	req.Apply(doctor)

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

// UpdateDoctor replaces the user and doctor fields together.
func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if err := s.userSvc.Reprovision(ctx, &req.User, &doctor.User); err != nil {
		return nil, err
	}
	req.Apply(doctor)

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) (*model.Page[*model.Doctor], error) {
	page, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return page, nil
}
