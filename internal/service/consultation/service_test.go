package consultation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var start = time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)

func newService() (*Service, *mocks.ConsultationRepository, *mocks.Publisher) {
	repo := new(mocks.ConsultationRepository)
	pub := new(mocks.Publisher)
	return NewService(repo, pub), repo, pub
}

func existing(status model.ConsultationStatus) *model.Consultation {
	end := start.Add(time.Hour)
	return &model.Consultation{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		ClinicID:  uuid.New(),
		StartTime: start,
		EndTime:   &end,
		Status:    status,
	}
}

func TestCreateConsultation(t *testing.T) {
	svc, repo, pub := newService()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Consultation")).Return(nil)
	pub.On("Publish", mock.Anything, EventCreated, mock.Anything).Return(nil)

	req := &model.ConsultationRequest{
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		ClinicID:  uuid.New(),
		StartTime: start,
	}
	c, err := svc.CreateConsultation(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, req.DoctorID, c.DoctorID)
	assert.Equal(t, req.PatientID, c.PatientID)
	assert.Equal(t, req.ClinicID, c.ClinicID)
	assert.Equal(t, model.ConsultationStatusWaiting, c.Status)
	assert.Equal(t, start.Add(model.DefaultConsultationDuration), *c.EndTime)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateConsultationInvalidStatus(t *testing.T) {
	svc, repo, _ := newService()

	_, err := svc.CreateConsultation(context.Background(), &model.ConsultationRequest{
		StartTime: start,
		Status:    "cancelled",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "status")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateConsultationPublishFailureIgnored(t *testing.T) {
	svc, repo, pub := newService()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, EventCreated, mock.Anything).Return(errors.New("redis down"))

	_, err := svc.CreateConsultation(context.Background(), &model.ConsultationRequest{StartTime: start})
	assert.NoError(t, err)
}

func TestChangeStatus(t *testing.T) {
	svc, repo, pub := newService()
	c := existing(model.ConsultationStatusPaid)
	repo.On("Get", mock.Anything, c.ID).Return(c, nil)
	repo.On("Update", mock.Anything, c).Return(nil)
	pub.On("Publish", mock.Anything, EventStatusChanged, mock.Anything).Return(nil)

	// any status may follow any other
	updated, err := svc.ChangeStatus(context.Background(), c.ID, "waiting")
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationStatusWaiting, updated.Status)
	repo.AssertExpectations(t)
}

func TestChangeStatusInvalidLeavesRecord(t *testing.T) {
	svc, repo, pub := newService()
	c := existing(model.ConsultationStatusConfirmed)
	repo.On("Get", mock.Anything, c.ID).Return(c, nil)

	_, err := svc.ChangeStatus(context.Background(), c.ID, "cancelled")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, MsgInvalidStatus, appErr.Message)
	assert.Equal(t, model.ConsultationStatusConfirmed, c.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeStatusUnknownConsultation(t *testing.T) {
	svc, repo, _ := newService()
	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(nil, apperrors.NewNotFound("consultation", nil))

	_, err := svc.ChangeStatus(context.Background(), id, "paid")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestChangeStatusNormalizesEndTime(t *testing.T) {
	svc, repo, pub := newService()
	c := existing(model.ConsultationStatusWaiting)
	c.EndTime = nil
	repo.On("Get", mock.Anything, c.ID).Return(c, nil)
	repo.On("Update", mock.Anything, c).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	updated, err := svc.ChangeStatus(context.Background(), c.ID, "started")
	require.NoError(t, err)
	require.NotNil(t, updated.EndTime)
	assert.Equal(t, start.Add(30*time.Minute), *updated.EndTime)
}

func TestPatchConsultationKeepsOmittedFields(t *testing.T) {
	svc, repo, pub := newService()
	c := existing(model.ConsultationStatusWaiting)
	doctorID := c.DoctorID
	notes := "bring test results"
	repo.On("Get", mock.Anything, c.ID).Return(c, nil)
	repo.On("Update", mock.Anything, c).Return(nil)
	pub.On("Publish", mock.Anything, EventUpdated, mock.Anything).Return(nil)

	updated, err := svc.PatchConsultation(context.Background(), c.ID, &model.PatchConsultationRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, doctorID, updated.DoctorID)
	assert.Equal(t, notes, *updated.Notes)
}

func TestListConsultations(t *testing.T) {
	svc, repo, _ := newService()
	q := &model.ConsultationQuery{Limit: 10}
	page := &model.Page[*model.Consultation]{Items: []*model.Consultation{existing(model.ConsultationStatusWaiting)}, Total: 1}
	repo.On("List", mock.Anything, q).Return(page, nil)

	got, err := svc.ListConsultations(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
}
