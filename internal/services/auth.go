package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/repositories"
	apperrors "isp-order-system/pkg/errors"
	"isp-order-system/pkg/service"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenResponseDTO, error)
}

type AuthService struct {
	userRepo repositories.UserRepositoryInterface
	jwtSvc   service.JWTServiceInterface
	logger   *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	jwtSvc service.JWTServiceInterface,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{userRepo: userRepo, jwtSvc: jwtSvc, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenResponseDTO, error) {
	user, err := s.userRepo.FindByLogin(ctx, payload.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, apperrors.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		s.logger.Warn("Неудачная попытка входа", zap.String("login", payload.Login))
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponseDTO{
		AccessToken: token,
		User:        dto.ShortUserDTO{ID: user.ID, Fio: user.Fio, Role: user.Role},
	}, nil
}
