package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/internal/service/user"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func strPtr(s string) *string { return &s }

func TestCreatePatient(t *testing.T) {
	repo := new(mocks.PatientRepository)
	users := new(mocks.UserRepository)
	svc := NewService(repo, user.NewService(users, security.NewBcryptHasher(4)))

	users.On("UsernameExists", mock.Anything, "Petrov_PS").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Patient")).Return(nil)

	patient, err := svc.CreatePatient(context.Background(), &model.PatientRequest{
		User:  model.UserRequest{FirstName: "Petr", MiddleName: strPtr("Sergeevich"), LastName: "Petrov"},
		Phone: strPtr("+79990000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Petrov_PS", *patient.User.Username)
	assert.Equal(t, model.RolePatient, patient.User.Role)
	assert.Empty(t, patient.User.PasswordHash)
	assert.Equal(t, "+79990000000", *patient.Phone)
}

func TestGetPatientNotFound(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, user.NewService(new(mocks.UserRepository), security.NewBcryptHasher(4)))
	id := uuid.New()

	repo.On("Get", mock.Anything, id).Return(nil, apperrors.NewNotFound("patient", nil))

	_, err := svc.GetPatient(context.Background(), id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeletePatient(t *testing.T) {
	repo := new(mocks.PatientRepository)
	svc := NewService(repo, user.NewService(new(mocks.UserRepository), security.NewBcryptHasher(4)))
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.DeletePatient(context.Background(), id))
	repo.AssertExpectations(t)
}
