package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const (
	MsgInvalidCredentials = "No active account found with the given credentials"
	MsgInvalidToken       = "Token is invalid or expired"
)

type AuthServicer interface {
	Login(ctx context.Context, username, password string) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AccessTokenResponse, error)
}

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

// Login verifies the credentials and issues an access/refresh pair. Every failure
// yields the same unauthorized error.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewUnauthorized(MsgInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Ctx(ctx).Debug().Str("username", username).Msg("login rejected")
		return nil, apperrors.NewUnauthorized(MsgInvalidCredentials, err)
	}

	access, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.TokenResponse{
		Access:  access,
		Refresh: refresh,
	}, nil
}

// Refresh issues a new access token for a valid refresh token whose user still exists.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.AccessTokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized(MsgInvalidToken, err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewUnauthorized(MsgInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	access, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AccessTokenResponse{Access: access}, nil
}
