package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/events"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/repositories"
	"isp-order-system/internal/statemachine"
	"isp-order-system/pkg/constants"
	apperrors "isp-order-system/pkg/errors"
	"isp-order-system/pkg/eventbus"
)

// TransitionServiceInterface — движок переходов: проверяет легальность
// ребра и роль актора, затем в одной транзакции меняет статус заявки и
// дописывает запись в журнал передач. Уведомления уходят после коммита
// и на консистентность не влияют.
type TransitionServiceInterface interface {
	Transition(ctx context.Context, ref entities.OrderRef, actorID uint64, targetStatus string, recipientID uint64) (*entities.Order, error)
	Cancel(ctx context.Context, ref entities.OrderRef, actorID uint64) (*entities.Order, error)
	RequestMaterials(ctx context.Context, ref entities.OrderRef, actorID uint64, materialID uint64, quantity int64) (*entities.MaterialRequest, error)
}

type TransitionService struct {
	txManager    repositories.TxManagerInterface
	orderRepo    repositories.OrderRepositoryInterface
	handoffRepo  repositories.HandoffRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	materialRepo repositories.MaterialRepositoryInterface
	cache        repositories.CacheRepositoryInterface
	bus          *eventbus.Bus
	logger       *zap.Logger
}

func NewTransitionService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	handoffRepo repositories.HandoffRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	materialRepo repositories.MaterialRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TransitionServiceInterface {
	return &TransitionService{
		txManager:    txManager,
		orderRepo:    orderRepo,
		handoffRepo:  handoffRepo,
		userRepo:     userRepo,
		materialRepo: materialRepo,
		cache:        cache,
		bus:          bus,
		logger:       logger,
	}
}

func (s *TransitionService) Transition(ctx context.Context, ref entities.OrderRef, actorID uint64, targetStatus string, recipientID uint64) (*entities.Order, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked {
		return nil, fmt.Errorf("пользователь %d заблокирован: %w", actorID, apperrors.ErrForbidden)
	}

	recipient, err := s.userRepo.FindUserByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient.IsBlocked {
		return nil, apperrors.NewInvalidInputError("получатель %d заблокирован и не может принимать заявки", recipientID)
	}

	order, rec, err := s.attempt(ctx, ref, actor, recipient, targetStatus)
	if errors.Is(err, apperrors.ErrConcurrentModification) {
		// Одна повторная попытка: перечитываем заявку и проверяем ребро
		// заново против уже изменённого статуса.
		s.logger.Warn("Конкурентное изменение заявки, повторяем попытку",
			zap.String("kind", string(ref.Kind)), zap.Uint64("orderID", ref.ID))
		order, rec, err = s.attempt(ctx, ref, actor, recipient, targetStatus)
	}
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order, rec)
	return order, nil
}

// attempt выполняет шаги 1–4 контракта: чтение, проверка ребра и роли,
// атомарная запись статуса и журнала. Возвращает обновлённую заявку.
func (s *TransitionService) attempt(ctx context.Context, ref entities.OrderRef, actor, recipient *entities.User, targetStatus string) (*entities.Order, *entities.HandoffRecord, error) {
	current, err := s.orderRepo.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	if !current.IsActive {
		return nil, nil, fmt.Errorf("заявка %s: %w", current.AppNumber, apperrors.ErrOrderClosed)
	}

	edge, ok := statemachine.EdgeFor(ref.Kind, current.Status, targetStatus)
	if !ok {
		return nil, nil, fmt.Errorf("переход %s -> %s для вида %s: %w",
			current.Status, targetStatus, ref.Kind, apperrors.ErrIllegalTransition)
	}
	if actor.Role != edge.Role {
		return nil, nil, fmt.Errorf("переход %s -> %s требует роль %q, у актора %q: %w",
			edge.From, edge.To, edge.Role, actor.Role, apperrors.ErrForbidden)
	}
	if recipient.Role != edge.NextRole {
		return nil, nil, apperrors.NewInvalidInputError(
			"получатель должен иметь роль %q, у пользователя %d роль %q",
			edge.NextRole, recipient.ID, recipient.Role)
	}

	rec := &entities.HandoffRecord{
		OrderKind:       ref.Kind,
		OrderID:         ref.ID,
		SenderID:        actor.ID,
		RecipientID:     recipient.ID,
		SenderStatus:    current.Status,
		RecipientStatus: targetStatus,
		TxID:            uuid.New(),
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		locked, err := s.orderRepo.FindForUpdateInTx(ctx, tx, ref.Kind, ref.ID)
		if err != nil {
			return err
		}
		if !locked.IsActive {
			return apperrors.ErrOrderClosed
		}
		// Статус уехал между чтением и блокировкой строки — кто-то
		// успел закоммитить свой переход раньше нас.
		if locked.Status != current.Status {
			return apperrors.ErrConcurrentModification
		}

		if edge.EnterWarehouse {
			if err := s.materialRepo.ReserveInTx(ctx, tx, ref); err != nil {
				return err
			}
		}
		if edge.ExitWarehouse {
			if err := s.materialRepo.ReleaseInTx(ctx, tx, ref); err != nil {
				return err
			}
		}

		if err := s.orderRepo.SetStatusInTx(ctx, tx, ref.Kind, ref.ID, targetStatus); err != nil {
			return err
		}
		return s.handoffRepo.AppendInTx(ctx, tx, rec)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.orderRepo.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, rec, nil
}

// afterCommit — шаг 5 контракта: сброс кеша рейтинга и событие для
// уведомлений. Любая ошибка здесь логируется и проглатывается.
func (s *TransitionService) afterCommit(ctx context.Context, order *entities.Order, rec *entities.HandoffRecord) {
	sender, errSender := s.userRepo.FindUserByID(ctx, rec.SenderID)
	recipient, errRecipient := s.userRepo.FindUserByID(ctx, rec.RecipientID)

	keys := make([]string, 0, 4)
	if errRecipient == nil {
		keys = append(keys,
			rankCacheKey(recipient.Role, order.Kind, nil),
			rankCacheKey(recipient.Role, order.Kind, &order.Region))
	}
	if errSender == nil && (errRecipient != nil || sender.Role != recipient.Role) {
		keys = append(keys,
			rankCacheKey(sender.Role, order.Kind, nil),
			rankCacheKey(sender.Role, order.Kind, &order.Region))
	}
	if len(keys) > 0 {
		if err := s.cache.Del(ctx, keys...); err != nil {
			s.logger.Warn("Не удалось сбросить кеш рейтинга", zap.Error(err))
		}
	}

	s.bus.Publish(ctx, events.HandoffCreatedEvent{Order: *order, Record: *rec})
}

// Cancel выставляет is_active=false. Отмена ортогональна статусу и
// терминальна: дальше никаких переходов и записей журнала.
func (s *TransitionService) Cancel(ctx context.Context, ref entities.OrderRef, actorID uint64) (*entities.Order, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsBlocked {
		return nil, fmt.Errorf("пользователь %d заблокирован: %w", actorID, apperrors.ErrForbidden)
	}

	latest, err := s.handoffRepo.LatestFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		locked, err := s.orderRepo.FindForUpdateInTx(ctx, tx, ref.Kind, ref.ID)
		if err != nil {
			return err
		}
		if !locked.IsActive {
			return apperrors.ErrOrderClosed
		}

		allowed := actor.Role == constants.RoleAdmin ||
			actor.ID == locked.ClientID ||
			(latest != nil && latest.RecipientID == actor.ID)
		if !allowed {
			return fmt.Errorf("отменить заявку может админ, клиент или текущий держатель: %w", apperrors.ErrForbidden)
		}

		return s.orderRepo.SetActiveInTx(ctx, tx, ref.Kind, ref.ID, false)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Заявка отменена",
		zap.String("appNumber", order.AppNumber), zap.Uint64("actorID", actorID))
	return order, nil
}

// RequestMaterials заводит запрос на материалы под заявку. Списание
// произойдёт позже, на ребре входа на склад; здесь только заявка-резерв.
func (s *TransitionService) RequestMaterials(ctx context.Context, ref entities.OrderRef, actorID uint64, materialID uint64, quantity int64) (*entities.MaterialRequest, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != constants.RoleTechnician {
		return nil, fmt.Errorf("запрашивать материалы может только техник: %w", apperrors.ErrForbidden)
	}

	order, err := s.orderRepo.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if !order.IsActive {
		return nil, fmt.Errorf("заявка %s: %w", order.AppNumber, apperrors.ErrOrderClosed)
	}
	if orderkind.IsFinalStatus(order.Status) {
		return nil, fmt.Errorf("заявка %s уже завершена: %w", order.AppNumber, apperrors.ErrOrderClosed)
	}

	req := &entities.MaterialRequest{
		OrderKind:  ref.Kind,
		OrderID:    ref.ID,
		MaterialID: materialID,
		Quantity:   quantity,
	}
	id, err := s.materialRepo.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id

	s.logger.Info("Запрос материалов создан",
		zap.String("appNumber", order.AppNumber),
		zap.Uint64("materialID", materialID), zap.Int64("quantity", quantity))
	return req, nil
}

// rankCacheKey — ключ кеша рейтинга кандидатов; должен совпадать у
// селектора и у сброса кеша в движке.
func rankCacheKey(role string, kind orderkind.Kind, region *string) string {
	if region == nil {
		return fmt.Sprintf("rank:%s:%s:all", role, kind)
	}
	return fmt.Sprintf("rank:%s:%s:%s", role, kind, *region)
}
