package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/repositories"
	"isp-order-system/pkg/constants"
	apperrors "isp-order-system/pkg/errors"
)

// AssignmentServiceInterface — селектор назначений: ранжирует кандидатов
// роли по текущей загрузке (по возрастанию). Только чтение; движок и
// диспетчер берут отсюда «наименее загруженного».
type AssignmentServiceInterface interface {
	RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error)
}

type AssignmentService struct {
	repo     repositories.AssignmentRepositoryInterface
	cache    repositories.CacheRepositoryInterface
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewAssignmentService(
	repo repositories.AssignmentRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AssignmentServiceInterface {
	return &AssignmentService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *AssignmentService) RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error) {
	if !constants.IsValidRole(role) {
		return nil, apperrors.NewInvalidInputError("неизвестная роль %q", role)
	}
	if _, err := orderkind.Get(kind); err != nil {
		return nil, err
	}

	key := rankCacheKey(role, kind, region)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var candidates []dto.CandidateDTO
		if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
			return candidates, nil
		}
		// Битый снимок в кеше просто игнорируем и считаем заново.
	}

	candidates, err := s.repo.RankCandidates(ctx, role, kind, region)
	if err != nil {
		s.logger.Error("Ошибка расчёта рейтинга кандидатов",
			zap.String("role", role), zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	// Порядок фиксируется и на стороне сервиса: загрузка по возрастанию,
	// ничьи — по ФИО, затем по id. Повторные вызовы дают один и тот же
	// список независимо от плана запроса.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Load != candidates[j].Load {
			return candidates[i].Load < candidates[j].Load
		}
		if candidates[i].Fio != candidates[j].Fio {
			return candidates[i].Fio < candidates[j].Fio
		}
		return candidates[i].UserID < candidates[j].UserID
	})

	if raw, err := json.Marshal(candidates); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("Не удалось положить рейтинг в кеш", zap.Error(err))
		}
	}
	return candidates, nil
}
