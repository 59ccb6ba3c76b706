package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/orderkind"
	"isp-order-system/pkg/constants"
	apperrors "isp-order-system/pkg/errors"
)

func newAssignmentEnv(repo *memAssignmentRepo, cache *memCache) AssignmentServiceInterface {
	return NewAssignmentService(repo, cache, 30*time.Second, zap.NewNop())
}

func TestRankCandidates_Ordering(t *testing.T) {
	repo := &memAssignmentRepo{candidates: []dto.CandidateDTO{
		{UserID: 3, Fio: "Васильев", Load: 2},
		{UserID: 1, Fio: "Борисов", Load: 0},
		{UserID: 5, Fio: "Алиев", Load: 0},
		{UserID: 2, Fio: "Алиев", Load: 0},
		{UserID: 4, Fio: "Гафуров", Load: 1},
	}}
	svc := newAssignmentEnv(repo, newMemCache())

	got, err := svc.RankCandidates(context.Background(), constants.RoleTechnician, orderkind.Connection, nil)
	require.NoError(t, err)

	// Загрузка по возрастанию, ничьи — по ФИО, затем по id.
	want := []uint64{2, 5, 1, 4, 3}
	require.Len(t, got, len(want))
	for i, id := range want {
		assert.Equal(t, id, got[i].UserID, "позиция %d", i)
	}
}

func TestRankCandidates_Deterministic(t *testing.T) {
	repo := &memAssignmentRepo{candidates: []dto.CandidateDTO{
		{UserID: 2, Fio: "Борисов", Load: 1},
		{UserID: 1, Fio: "Алиев", Load: 1},
	}}
	cache := newMemCache()
	svc := newAssignmentEnv(repo, cache)

	first, err := svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Connection, nil)
	require.NoError(t, err)
	second, err := svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Connection, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second, "повторный вызов без изменений даёт тот же список")
	assert.Equal(t, 1, repo.calls, "второй вызов обслуживается из кеша")
}

func TestRankCandidates_CacheKeyPerRegion(t *testing.T) {
	repo := &memAssignmentRepo{candidates: []dto.CandidateDTO{{UserID: 1, Fio: "Алиев"}}}
	cache := newMemCache()
	svc := newAssignmentEnv(repo, cache)

	region := "Душанбе"
	_, err := svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Connection, &region)
	require.NoError(t, err)
	_, err = svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Connection, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls, "рейтинг по региону и общий кешируются раздельно")
	assert.Contains(t, cache.data, "rank:manager:connection:Душанбе")
	assert.Contains(t, cache.data, "rank:manager:connection:all")
}

func TestRankCandidates_InvalidArguments(t *testing.T) {
	svc := newAssignmentEnv(&memAssignmentRepo{}, newMemCache())

	_, err := svc.RankCandidates(context.Background(), "no_such_role", orderkind.Connection, nil)
	require.Error(t, err)
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Kind("bogus"), nil)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRankCandidates_CorruptCacheIgnored(t *testing.T) {
	repo := &memAssignmentRepo{candidates: []dto.CandidateDTO{{UserID: 7, Fio: "Алиев"}}}
	cache := newMemCache()
	require.NoError(t, cache.Set(context.Background(), "rank:manager:connection:all", "{не json", 0))
	svc := newAssignmentEnv(repo, cache)

	got, err := svc.RankCandidates(context.Background(), constants.RoleManager, orderkind.Connection, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(7), got[0].UserID)
	assert.Equal(t, 1, repo.calls, "битый снимок пересчитывается заново")
}
