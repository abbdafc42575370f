package user

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

// maxUsernameAttempts bounds the disambiguation loop.
const maxUsernameAttempts = 1000

// UsernameChecker reports whether a username is taken.
type UsernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// UserServicer prepares the user record owned by a doctor or patient.
type UserServicer interface {
	Provision(ctx context.Context, req *model.UserRequest, user *model.User) error
	Reprovision(ctx context.Context, req *model.UserRequest, user *model.User) error
}

type Service struct {
	checker UsernameChecker
	hasher  security.PasswordHasher
}

func NewService(checker UsernameChecker, hasher security.PasswordHasher) *Service {
	return &Service{
		checker: checker,
		hasher:  hasher,
	}
}

// Provision fills a new user from req: the explicit username or a generated one, and the
// password hash when a password is given. Without a password the account cannot log in.
func (s *Service) Provision(ctx context.Context, req *model.UserRequest, user *model.User) error {
	req.Apply(user)

	if req.Username != nil && *req.Username != "" {
		username := *req.Username
		user.Username = &username
	} else {
		middle := ""
		if req.MiddleName != nil {
			middle = *req.MiddleName
		}
		username, err := GenerateUsername(ctx, s.checker, req.FirstName, middle, req.LastName)
		if err != nil {
			return err
		}
		user.Username = &username
	}

	return s.setPassword(req, user)
}

// Reprovision replaces the user fields of an existing user. Username and password are
// kept when req omits them.
func (s *Service) Reprovision(ctx context.Context, req *model.UserRequest, user *model.User) error {
	req.Apply(user)

	if req.Username != nil && *req.Username != "" {
		username := *req.Username
		user.Username = &username
	}

	return s.setPassword(req, user)
}

func (s *Service) setPassword(req *model.UserRequest, user *model.User) error {
	if req.Password == nil {
		return nil
	}
	hash, err := s.hasher.Hash(*req.Password)
	if err != nil {
		return apperrors.NewFieldValidation(map[string]string{"user.password": "This field may not be blank."})
	}
	user.PasswordHash = hash
	return nil
}

// GenerateUsername derives last + "_" + first letter of first + first letter of middle,
// keeping the casing of the input, then appends _1, _2, ... until the name is free.
// The final uniqueness guarantee is the database constraint.
func GenerateUsername(ctx context.Context, checker UsernameChecker, first, middle, last string) (string, error) {
	fields := map[string]string{}
	if first == "" {
		fields["user.first_name"] = "Required to generate a username."
	}
	if middle == "" {
		fields["user.middle_name"] = "Required to generate a username."
	}
	if last == "" {
		fields["user.last_name"] = "This field is required."
	}
	if len(fields) > 0 {
		return "", apperrors.NewFieldValidation(fields)
	}

	base := last + "_" + firstRune(first) + firstRune(middle)

	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		exists, err := checker.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(i)
	}

	return "", apperrors.NewConflict("could not generate a unique username", nil)
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}
