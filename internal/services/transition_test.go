package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	"isp-order-system/pkg/constants"
	apperrors "isp-order-system/pkg/errors"
	"isp-order-system/pkg/eventbus"
)

type transitionEnv struct {
	orders    *memOrderRepo
	handoffs  *memHandoffRepo
	users     *memUserRepo
	materials *memMaterialRepo
	cache     *memCache
	svc       TransitionServiceInterface
}

const (
	managerID       = 1
	juniorManagerID = 2
	controllerID    = 3
	technicianID    = 4
	warehouseID     = 5
	blockedUserID   = 6
	clientID        = 10
	adminID         = 99
)

func newTransitionEnv(t *testing.T) *transitionEnv {
	t.Helper()

	orders := newMemOrderRepo()
	handoffs := newMemHandoffRepo(orders)
	users := newMemUserRepo(
		&entities.User{ID: managerID, Fio: "Менеджер", Role: constants.RoleManager},
		&entities.User{ID: juniorManagerID, Fio: "Младший менеджер", Role: constants.RoleJuniorManager},
		&entities.User{ID: controllerID, Fio: "Контролёр", Role: constants.RoleController},
		&entities.User{ID: technicianID, Fio: "Техник", Role: constants.RoleTechnician},
		&entities.User{ID: warehouseID, Fio: "Кладовщик", Role: constants.RoleWarehouse},
		&entities.User{ID: blockedUserID, Fio: "Заблокированный", Role: constants.RoleManager, IsBlocked: true},
		&entities.User{ID: clientID, Fio: "Клиент", Role: constants.RoleClient},
		&entities.User{ID: adminID, Fio: "Админ", Role: constants.RoleAdmin},
	)
	materials := &memMaterialRepo{}
	cache := newMemCache()
	logger := zap.NewNop()

	svc := NewTransitionService(
		&fakeTxManager{}, orders, handoffs, users, materials, cache,
		eventbus.New(logger), logger,
	)

	return &transitionEnv{
		orders: orders, handoffs: handoffs, users: users,
		materials: materials, cache: cache, svc: svc,
	}
}

// newConnectionOrder заводит заявку на подключение в заданном статусе.
func (env *transitionEnv) newConnectionOrder(t *testing.T, status string) entities.OrderRef {
	t.Helper()
	id, err := env.orders.CreateInTx(context.Background(), nil, &entities.Order{
		Kind:      orderkind.Connection,
		AppNumber: "CONN-B2C-0001",
		ClientID:  clientID,
		Address:   "пр. Рудаки, 1",
		Region:    "Душанбе",
		Status:    status,
	})
	require.NoError(t, err)
	return entities.OrderRef{Kind: orderkind.Connection, ID: id}
}

func TestTransition_HappyPath(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	order, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
	require.NoError(t, err)
	assert.Equal(t, orderkind.StatusInJuniorManager, order.Status)

	stored, err := env.orders.FindByID(context.Background(), ref.Kind, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, orderkind.StatusInJuniorManager, stored.Status, "новый статус должен быть закоммичен")

	require.Len(t, env.handoffs.records, 1, "переход должен дописать ровно одну запись журнала")
	rec := env.handoffs.records[0]
	assert.Equal(t, uint64(managerID), rec.SenderID)
	assert.Equal(t, uint64(juniorManagerID), rec.RecipientID)
	assert.Equal(t, orderkind.StatusInManager, rec.SenderStatus)
	assert.Equal(t, orderkind.StatusInJuniorManager, rec.RecipientStatus)
	assert.NotEmpty(t, rec.TxID.String())
}

func TestTransition_FullRouteWithWarehouseLoop(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	steps := []struct {
		actorID     uint64
		target      string
		recipientID uint64
	}{
		{managerID, orderkind.StatusInJuniorManager, juniorManagerID},
		{juniorManagerID, orderkind.StatusInController, controllerID},
		{controllerID, orderkind.StatusBetweenControllerTechnician, technicianID},
		{technicianID, orderkind.StatusInTechnician, technicianID},
		{technicianID, orderkind.StatusInTechnicianWork, technicianID},
		{technicianID, orderkind.StatusInWarehouse, warehouseID},
		{warehouseID, orderkind.StatusInTechnicianWork, technicianID},
		{technicianID, orderkind.StatusCompleted, technicianID},
	}

	for i, step := range steps {
		// Снимок журнала до шага: уже записанные строки меняться не должны.
		before := make([]entities.HandoffRecord, len(env.handoffs.records))
		copy(before, env.handoffs.records)

		order, err := env.svc.Transition(context.Background(), ref, step.actorID, step.target, step.recipientID)
		require.NoError(t, err, "шаг %d: переход в %s", i, step.target)
		assert.Equal(t, step.target, order.Status)

		require.Len(t, env.handoffs.records, i+1)
		if i > 0 {
			assert.Equal(t, before, env.handoffs.records[:i], "шаг %d: журнал только пополняется", i)
		}
	}

	assert.Equal(t, []entities.OrderRef{ref}, env.materials.reserved, "вход на склад резервирует материалы один раз")
	assert.Equal(t, []entities.OrderRef{ref}, env.materials.released, "выход со склада освобождает материалы один раз")

	// Из завершённого статуса пути нет.
	_, err := env.svc.Transition(context.Background(), ref, technicianID, orderkind.StatusInTechnicianWork, technicianID)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestTransition_IllegalEdge(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	// Попытка перепрыгнуть младшего менеджера.
	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInController, controllerID)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	assert.Empty(t, env.handoffs.records, "неудачный переход не должен оставлять след в журнале")

	stored, _ := env.orders.FindByID(context.Background(), ref.Kind, ref.ID)
	assert.Equal(t, orderkind.StatusInManager, stored.Status)
}

func TestTransition_WrongActorRole(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	// Ребро легально, но выполнять его может только менеджер.
	_, err := env.svc.Transition(context.Background(), ref, technicianID, orderkind.StatusInJuniorManager, juniorManagerID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTransition_WrongRecipientRole(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, technicianID)
	require.Error(t, err)
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid, "получатель не той роли — ошибка валидации входных данных")
}

func TestTransition_BlockedActor(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	_, err := env.svc.Transition(context.Background(), ref, blockedUserID, orderkind.StatusInJuniorManager, juniorManagerID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTransition_CancelledOrder(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)
	require.NoError(t, env.orders.SetActiveInTx(context.Background(), nil, ref.Kind, ref.ID, false))

	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
	assert.ErrorIs(t, err, apperrors.ErrOrderClosed)
}

func TestTransition_NotFound(t *testing.T) {
	env := newTransitionEnv(t)
	ref := entities.OrderRef{Kind: orderkind.Connection, ID: 777}

	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransition_ConcurrentModification(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	// Между чтением и блокировкой строки заявку успевает перевести
	// кто-то другой. Первая попытка ловит дрейф статуса, повтор
	// перечитывает заявку и упирается в уже нелегальное ребро.
	drifted := false
	env.orders.onFindForUpdate = func(stored *entities.Order) {
		if !drifted {
			drifted = true
			stored.Status = orderkind.StatusInJuniorManager
		}
	}

	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition, "проигравший получает ошибку, а не тихий успех")
	assert.Len(t, env.handoffs.records, 0, "проигравшая попытка не пишет в журнал")

	stored, _ := env.orders.FindByID(context.Background(), ref.Kind, ref.ID)
	assert.Equal(t, orderkind.StatusInJuniorManager, stored.Status, "статус победителя не затирается")
}

func TestTransition_InsufficientMaterials(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInTechnicianWork)
	env.materials.reserveErr = apperrors.ErrInsufficientMaterials

	_, err := env.svc.Transition(context.Background(), ref, technicianID, orderkind.StatusInWarehouse, warehouseID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientMaterials)

	stored, _ := env.orders.FindByID(context.Background(), ref.Kind, ref.ID)
	assert.Equal(t, orderkind.StatusInTechnicianWork, stored.Status, "при нехватке материалов статус не меняется")
	assert.Empty(t, env.handoffs.records)
}

func TestTransition_InvalidatesRankCache(t *testing.T) {
	env := newTransitionEnv(t)
	ref := env.newConnectionOrder(t, orderkind.StatusInManager)

	_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
	require.NoError(t, err)

	assert.Contains(t, env.cache.deleted, rankCacheKey(constants.RoleJuniorManager, orderkind.Connection, nil))
	assert.Contains(t, env.cache.deleted, rankCacheKey(constants.RoleManager, orderkind.Connection, nil))
	region := "Душанбе"
	assert.Contains(t, env.cache.deleted, rankCacheKey(constants.RoleJuniorManager, orderkind.Connection, &region))
}

func TestRequestMaterials(t *testing.T) {
	t.Run("техник запрашивает материалы", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInTechnicianWork)

		req, err := env.svc.RequestMaterials(context.Background(), ref, technicianID, 5, 3)
		require.NoError(t, err)
		assert.NotZero(t, req.ID)
		assert.Equal(t, uint64(5), req.MaterialID)
		assert.Equal(t, int64(3), req.Quantity)
		require.Len(t, env.materials.requests, 1)
	})

	t.Run("не техник запрашивать не может", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInTechnicianWork)

		_, err := env.svc.RequestMaterials(context.Background(), ref, managerID, 5, 3)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("по закрытой заявке нельзя", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInTechnicianWork)
		require.NoError(t, env.orders.SetActiveInTx(context.Background(), nil, ref.Kind, ref.ID, false))

		_, err := env.svc.RequestMaterials(context.Background(), ref, technicianID, 5, 3)
		assert.ErrorIs(t, err, apperrors.ErrOrderClosed)
	})

	t.Run("по завершённой заявке нельзя", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusCompleted)

		_, err := env.svc.RequestMaterials(context.Background(), ref, technicianID, 5, 3)
		assert.ErrorIs(t, err, apperrors.ErrOrderClosed)
	})
}

func TestCancel(t *testing.T) {
	t.Run("клиент отменяет свою заявку", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		order, err := env.svc.Cancel(context.Background(), ref, clientID)
		require.NoError(t, err)
		assert.False(t, order.IsActive)
		assert.Equal(t, orderkind.StatusInManager, order.Status, "отмена не трогает статус")
	})

	t.Run("админ отменяет любую заявку", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		order, err := env.svc.Cancel(context.Background(), ref, adminID)
		require.NoError(t, err)
		assert.False(t, order.IsActive)
	})

	t.Run("текущий держатель отменяет заявку", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		_, err := env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
		require.NoError(t, err)

		order, err := env.svc.Cancel(context.Background(), ref, juniorManagerID)
		require.NoError(t, err)
		assert.False(t, order.IsActive)
	})

	t.Run("посторонний отменить не может", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		_, err := env.svc.Cancel(context.Background(), ref, technicianID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("повторная отмена", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		_, err := env.svc.Cancel(context.Background(), ref, clientID)
		require.NoError(t, err)

		_, err = env.svc.Cancel(context.Background(), ref, clientID)
		assert.ErrorIs(t, err, apperrors.ErrOrderClosed)
	})

	t.Run("после отмены переходы запрещены", func(t *testing.T) {
		env := newTransitionEnv(t)
		ref := env.newConnectionOrder(t, orderkind.StatusInManager)

		_, err := env.svc.Cancel(context.Background(), ref, clientID)
		require.NoError(t, err)

		_, err = env.svc.Transition(context.Background(), ref, managerID, orderkind.StatusInJuniorManager, juniorManagerID)
		assert.ErrorIs(t, err, apperrors.ErrOrderClosed)
	})
}
