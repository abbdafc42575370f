package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type takenNames map[string]bool

func (t takenNames) UsernameExists(_ context.Context, username string) (bool, error) {
	return t[username], nil
}

type failingChecker struct{}

func (failingChecker) UsernameExists(context.Context, string) (bool, error) {
	return false, errors.New("connection reset")
}

type stubHasher struct{}

func (stubHasher) Hash(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty")
	}
	return "hashed:" + p, nil
}

func (stubHasher) Compare(h, p string) error { return nil }

func strPtr(s string) *string { return &s }

func TestGenerateUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("free base name", func(t *testing.T) {
		name, err := GenerateUsername(ctx, takenNames{}, "Ivan", "Petrovich", "Ivanov")
		require.NoError(t, err)
		assert.Equal(t, "Ivanov_IP", name)
	})

	t.Run("keeps casing and handles cyrillic", func(t *testing.T) {
		name, err := GenerateUsername(ctx, takenNames{}, "иван", "Петрович", "Иванов")
		require.NoError(t, err)
		assert.Equal(t, "Иванов_иП", name)
	})

	t.Run("numeric suffix on collision", func(t *testing.T) {
		taken := takenNames{"Ivanov_IP": true, "Ivanov_IP_1": true}
		name, err := GenerateUsername(ctx, taken, "Ivan", "Petrovich", "Ivanov")
		require.NoError(t, err)
		assert.Equal(t, "Ivanov_IP_2", name)
	})

	t.Run("empty middle name rejected", func(t *testing.T) {
		_, err := GenerateUsername(ctx, takenNames{}, "Ivan", "", "Ivanov")
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Fields, "user.middle_name")
		assert.NotContains(t, appErr.Fields, "user.first_name")
	})

	t.Run("empty first name rejected", func(t *testing.T) {
		_, err := GenerateUsername(ctx, takenNames{}, "", "Petrovich", "Ivanov")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("checker failure", func(t *testing.T) {
		_, err := GenerateUsername(ctx, failingChecker{}, "Ivan", "Petrovich", "Ivanov")
		require.Error(t, err)
		_, ok := apperrors.As(err)
		assert.False(t, ok)
	})
}

func TestProvision(t *testing.T) {
	svc := NewService(takenNames{"Ivanov_IP": true}, stubHasher{})

	t.Run("generated username and hashed password", func(t *testing.T) {
		req := &model.UserRequest{
			FirstName:  "Ivan",
			MiddleName: strPtr("Petrovich"),
			LastName:   "Ivanov",
			Password:   strPtr("secret"),
		}
		var u model.User
		require.NoError(t, svc.Provision(context.Background(), req, &u))
		require.NotNil(t, u.Username)
		assert.Equal(t, "Ivanov_IP_1", *u.Username)
		assert.Equal(t, "hashed:secret", u.PasswordHash)
		assert.Equal(t, "Ivanov", u.LastName)
	})

	t.Run("explicit username kept, no password", func(t *testing.T) {
		req := &model.UserRequest{Username: strPtr("doc"), LastName: "Ivanov"}
		var u model.User
		require.NoError(t, svc.Provision(context.Background(), req, &u))
		assert.Equal(t, "doc", *u.Username)
		assert.Empty(t, u.PasswordHash)
	})
}

func TestReprovisionKeepsOmittedCredentials(t *testing.T) {
	svc := NewService(takenNames{}, stubHasher{})
	u := model.User{Username: strPtr("Ivanov_IP"), PasswordHash: "old", FirstName: "Ivan", LastName: "Ivanov"}

	req := &model.UserRequest{FirstName: "Ivan", LastName: "Petrov"}
	require.NoError(t, svc.Reprovision(context.Background(), req, &u))
	assert.Equal(t, "Ivanov_IP", *u.Username)
	assert.Equal(t, "old", u.PasswordHash)
	assert.Equal(t, "Petrov", u.LastName)
}
