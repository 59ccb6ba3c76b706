package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/repositories"
	apperrors "isp-order-system/pkg/errors"
)

// InboxServiceInterface — проекция «заявки, лежащие сейчас у меня».
// Читающая сторона того же предиката, что и расчёт загрузки: размер
// инбокса пользователя равен его загрузке в рейтинге кандидатов.
type InboxServiceInterface interface {
	InboxFor(ctx context.Context, userID uint64, role string, kind orderkind.Kind, region *string, limit, offset uint64) ([]dto.InboxItemDTO, error)
}

type InboxService struct {
	repo     repositories.InboxRepositoryInterface
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewInboxService(
	repo repositories.InboxRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) InboxServiceInterface {
	return &InboxService{repo: repo, userRepo: userRepo, logger: logger}
}

func (s *InboxService) InboxFor(ctx context.Context, userID uint64, role string, kind orderkind.Kind, region *string, limit, offset uint64) ([]dto.InboxItemDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, fmt.Errorf("инбокс запрошен для роли %q, у пользователя роль %q: %w",
			role, user.Role, apperrors.ErrForbidden)
	}

	if limit == 0 || limit > 200 {
		limit = 50
	}

	items, err := s.repo.InboxFor(ctx, userID, kind, region, limit, offset)
	if err != nil {
		s.logger.Error("Ошибка чтения инбокса",
			zap.Uint64("userID", userID), zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	result := make([]dto.InboxItemDTO, 0, len(items))
	for _, it := range items {
		result = append(result, dto.InboxItemDTO{
			Order:   orderToDTO(&it.Order),
			Handoff: handoffToDTO(&it.Handoff, nil, nil),
		})
	}
	return result, nil
}
