package clinic

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, req *model.ClinicRequest) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, req *model.ClinicRequest) (*model.Clinic, error)
	PatchClinic(ctx context.Context, id uuid.UUID, req *model.PatchClinicRequest) (*model.Clinic, error)
	DeleteClinic(ctx context.Context, id uuid.UUID) error
	ListClinics(ctx context.Context, limit, offset int) (*model.Page[*model.Clinic], error)
}

type Service struct {
	repo  repository.ClinicRepository
	cache *cache.Cache

	mu sync.Mutex
	// generation advances on every eviction; a read that overlapped one does not fill the cache
	generation atomic.Uint64
}

// NewService returns a clinic service with a read-through cache of single clinics.
// A non-positive ttl disables caching.
func NewService(repo repository.ClinicRepository, ttl, cleanupInterval time.Duration) *Service {
	s := &Service{repo: repo}
	if ttl > 0 {
		s.cache = cache.New(ttl, cleanupInterval)
	}
	return s
}

func (s *Service) CreateClinic(ctx context.Context, req *model.ClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{Base: model.Base{ID: uuid.New()}}
	req.Apply(clinic)

	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if clinic, ok := s.cached(id); ok {
		return clinic, nil
	}

	gen := s.generation.Load()
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	s.store(clinic, gen)
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req *model.ClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	req.Apply(clinic)

	if err := s.save(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

func (s *Service) PatchClinic(ctx context.Context, id uuid.UUID, req *model.PatchClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	req.Apply(clinic)

	if err := s.save(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	s.evict(id)
	defer s.evict(id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	return nil
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) (*model.Page[*model.Clinic], error) {
	page, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return page, nil
}

func (s *Service) save(ctx context.Context, clinic *model.Clinic) error {
	s.evict(clinic.ID)
	defer s.evict(clinic.ID)

	if err := s.repo.Update(ctx, clinic); err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	return nil
}

func (s *Service) cached(id uuid.UUID) (*model.Clinic, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, false
	}
	// hand out a copy so callers cannot mutate the cached entry
	clinic := *v.(*model.Clinic)
	return &clinic, true
}

// store caches clinic unless an eviction happened since gen was read.
func (s *Service) store(clinic *model.Clinic, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != gen {
		return
	}
	c := *clinic
	s.cache.SetDefault(clinic.ID.String(), &c)
}

func (s *Service) evict(id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation.Add(1)
	s.cache.Delete(id.String())
}
