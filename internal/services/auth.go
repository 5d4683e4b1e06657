package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lab-inventory-system/internal/dto"
	"lab-inventory-system/internal/entities"
	"lab-inventory-system/internal/repositories"
	apperrors "lab-inventory-system/pkg/errors"
	"lab-inventory-system/pkg/service"
)

// AuthService exchanges credentials for the token pair that carries the
// actor's identity, role and lab scope. Every downstream permission check
// reads those claims; there is no ambient current-user state anywhere else.
type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(userRepo repositories.UserRepositoryInterface, jwtService service.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtService: jwtService, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, *entities.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Role, user.LabID.Ptr())
	if err != nil {
		s.logger.Error("token generation failed", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, nil, err
	}

	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Me returns the authenticated user's own profile.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*entities.User, error) {
	return s.userRepo.FindUser(ctx, userID)
}

// Refresh reissues the pair from a valid refresh token. Claims are reloaded
// from the store so a role or lab change takes effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindUser(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Role, user.LabID.Ptr())
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}
