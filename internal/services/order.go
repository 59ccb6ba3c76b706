package services

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/entities"
	"isp-order-system/internal/events"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/repositories"
	"isp-order-system/internal/statemachine"
	apperrors "isp-order-system/pkg/errors"
	"isp-order-system/pkg/eventbus"
)

// OrderServiceInterface — создание и чтение заявок. Новая заявка сразу
// вручается наименее загруженному сотруднику стартовой роли: первая
// запись журнала передач появляется вместе с самой заявкой, иначе
// заявка не попала бы ни в один инбокс.
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error)
	FindOrder(ctx context.Context, ref entities.OrderRef) (*entities.Order, error)
	GetHistory(ctx context.Context, ref entities.OrderRef, limit, offset uint64) ([]dto.HandoffDTO, error)
	GetOrders(ctx context.Context, kind orderkind.Kind, limit, offset uint64) ([]dto.OrderDTO, uint64, error)
}

type OrderService struct {
	txManager   repositories.TxManagerInterface
	orderRepo   repositories.OrderRepositoryInterface
	handoffRepo repositories.HandoffRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	assignment  AssignmentServiceInterface
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	handoffRepo repositories.HandoffRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	assignment AssignmentServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager:   txManager,
		orderRepo:   orderRepo,
		handoffRepo: handoffRepo,
		userRepo:    userRepo,
		assignment:  assignment,
		bus:         bus,
		logger:      logger,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*entities.Order, error) {
	kind, err := orderkind.Parse(payload.Kind)
	if err != nil {
		return nil, err
	}
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, err
	}

	client, err := s.userRepo.FindUserByID(ctx, payload.ClientID)
	if err != nil {
		return nil, fmt.Errorf("клиент %d: %w", payload.ClientID, err)
	}

	// Стартовый держатель — роль, которой разрешено первое ребро графа.
	outgoing := statemachine.OutgoingFrom(kind, d.InitialStatus)
	if len(outgoing) == 0 {
		return nil, fmt.Errorf("у вида %s нет рёбер из стартового статуса %s", kind, d.InitialStatus)
	}
	initialRole := outgoing[0].Role

	holder, err := s.pickLeastLoaded(ctx, initialRole, kind, payload.Region)
	if err != nil {
		return nil, err
	}

	order := &entities.Order{
		Kind:     kind,
		ClientID: client.ID,
		Address:  payload.Address,
		Region:   payload.Region,
		Status:   d.InitialStatus,
		IsActive: true,
	}
	if payload.TariffRef != nil {
		order.TariffRef = null.StringFrom(*payload.TariffRef)
	}

	rec := &entities.HandoffRecord{
		OrderKind:       kind,
		SenderID:        client.ID,
		RecipientID:     holder,
		SenderStatus:    d.InitialStatus,
		RecipientStatus: d.InitialStatus,
		TxID:            uuid.New(),
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		appNumber, err := s.orderRepo.NextAppNumberInTx(ctx, tx, kind, payload.BusinessType)
		if err != nil {
			return err
		}
		order.AppNumber = appNumber

		newID, err := s.orderRepo.CreateInTx(ctx, tx, order)
		if err != nil {
			return err
		}
		order.ID = newID
		rec.OrderID = newID

		return s.handoffRepo.AppendInTx(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orderRepo.FindByID(ctx, kind, order.ID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.HandoffCreatedEvent{Order: *created, Record: *rec})
	s.logger.Info("Заявка создана",
		zap.String("appNumber", created.AppNumber),
		zap.Uint64("holderID", holder))
	return created, nil
}

// pickLeastLoaded берёт первого из рейтинга: сначала в регионе заявки,
// при пустом списке — по всем регионам.
func (s *OrderService) pickLeastLoaded(ctx context.Context, role string, kind orderkind.Kind, region string) (uint64, error) {
	candidates, err := s.assignment.RankCandidates(ctx, role, kind, &region)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		candidates, err = s.assignment.RankCandidates(ctx, role, kind, nil)
		if err != nil {
			return 0, err
		}
	}
	if len(candidates) == 0 {
		return 0, apperrors.NewInvalidInputError("нет доступных сотрудников с ролью %q", role)
	}
	return candidates[0].UserID, nil
}

func (s *OrderService) FindOrder(ctx context.Context, ref entities.OrderRef) (*entities.Order, error) {
	return s.orderRepo.FindByID(ctx, ref.Kind, ref.ID)
}

// GetHistory — журнал передач по заявке, новые записи первыми,
// обогащённый ФИО участников.
func (s *OrderService) GetHistory(ctx context.Context, ref entities.OrderRef, limit, offset uint64) ([]dto.HandoffDTO, error) {
	if _, err := s.orderRepo.FindByID(ctx, ref.Kind, ref.ID); err != nil {
		return nil, err
	}

	if limit == 0 || limit > 200 {
		limit = 200
	}

	history, err := s.handoffRepo.History(ctx, ref, limit, offset)
	if err != nil {
		return nil, err
	}

	// Участники повторяются из записи в запись, тянем каждого один раз.
	userCache := make(map[uint64]*entities.User)
	lookup := func(id uint64) *entities.User {
		if u, ok := userCache[id]; ok {
			return u
		}
		u, err := s.userRepo.FindUserByID(ctx, id)
		if err != nil {
			s.logger.Warn("Пользователь из журнала не найден", zap.Uint64("userID", id))
			u = nil
		}
		userCache[id] = u
		return u
	}

	result := make([]dto.HandoffDTO, 0, len(history))
	for i := range history {
		rec := &history[i]
		result = append(result, handoffToDTO(rec, lookup(rec.SenderID), lookup(rec.RecipientID)))
	}
	return result, nil
}

func (s *OrderService) GetOrders(ctx context.Context, kind orderkind.Kind, limit, offset uint64) ([]dto.OrderDTO, uint64, error) {
	if limit == 0 || limit > 200 {
		limit = 50
	}
	orders, total, err := s.orderRepo.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		result = append(result, orderToDTO(&orders[i]))
	}
	return result, total, nil
}
