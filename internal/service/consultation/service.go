package consultation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

// Published event types.
const (
	EventCreated       = "consultation.created"
	EventUpdated       = "consultation.updated"
	EventStatusChanged = "consultation.status_changed"
	EventDeleted       = "consultation.deleted"
)

const MsgInvalidStatus = "Invalid status"

type ConsultationServicer interface {
	CreateConsultation(ctx context.Context, req *model.ConsultationRequest) (*model.Consultation, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
	UpdateConsultation(ctx context.Context, id uuid.UUID, req *model.ConsultationRequest) (*model.Consultation, error)
	PatchConsultation(ctx context.Context, id uuid.UUID, req *model.PatchConsultationRequest) (*model.Consultation, error)
	DeleteConsultation(ctx context.Context, id uuid.UUID) error
	ListConsultations(ctx context.Context, query *model.ConsultationQuery) (*model.Page[*model.Consultation], error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*model.Consultation, error)
}

type Service struct {
	repo      repository.ConsultationRepository
	publisher messaging.Publisher
}

func NewService(repo repository.ConsultationRepository, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *Service) CreateConsultation(ctx context.Context, req *model.ConsultationRequest) (*model.Consultation, error) {
	consultation := &model.Consultation{ID: uuid.New()}
	req.Apply(consultation)

	if err := validateStatus(consultation.Status); err != nil {
		return nil, err
	}
	consultation.NormalizeEndTime()

	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to create consultation: %w", err)
	}

	s.publish(ctx, EventCreated, consultation)
	return consultation, nil
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return consultation, nil
}

// UpdateConsultation replaces every writable field. The status may be set directly here.
func (s *Service) UpdateConsultation(ctx context.Context, id uuid.UUID, req *model.ConsultationRequest) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	req.Apply(consultation)

	if err := s.save(ctx, consultation, EventUpdated); err != nil {
		return nil, err
	}
	return consultation, nil
}

func (s *Service) PatchConsultation(ctx context.Context, id uuid.UUID, req *model.PatchConsultationRequest) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	req.Apply(consultation)

	if err := s.save(ctx, consultation, EventUpdated); err != nil {
		return nil, err
	}
	return consultation, nil
}

func (s *Service) DeleteConsultation(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete consultation: %w", err)
	}

	s.publish(ctx, EventDeleted, map[string]uuid.UUID{"id": id})
	return nil
}

func (s *Service) ListConsultations(ctx context.Context, query *model.ConsultationQuery) (*model.Page[*model.Consultation], error) {
	page, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return page, nil
}

// ChangeStatus sets any of the known statuses; no transition order is enforced.
// An unknown status leaves the record untouched.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	next := model.ConsultationStatus(status)
	if !next.Valid() {
		return nil, apperrors.NewValidation(MsgInvalidStatus, nil)
	}

	previous := consultation.Status
	consultation.Status = next
	consultation.NormalizeEndTime()

	if err := s.repo.Update(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to change consultation status: %w", err)
	}

	s.publish(ctx, EventStatusChanged, map[string]interface{}{
		"id":     consultation.ID,
		"from":   previous,
		"to":     next,
		"record": consultation,
	})
	return consultation, nil
}

func (s *Service) save(ctx context.Context, consultation *model.Consultation, event string) error {
	if err := validateStatus(consultation.Status); err != nil {
		return err
	}
	consultation.NormalizeEndTime()

	if err := s.repo.Update(ctx, consultation); err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}

	s.publish(ctx, event, consultation)
	return nil
}

func (s *Service) publish(ctx context.Context, event string, payload interface{}) {
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", event).Msg("failed to publish consultation event")
	}
}

func validateStatus(status model.ConsultationStatus) error {
	if status.Valid() {
		return nil
	}
	return apperrors.NewFieldValidation(map[string]string{
		"status": fmt.Sprintf("\"%s\" is not a valid choice.", status),
	})
}
