package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"isp-order-system/internal/events"
	"isp-order-system/internal/repositories"
	"isp-order-system/internal/services"
	"isp-order-system/pkg/eventbus"
)

// NotificationListener слушает коммиты переходов и дёргает нотификатор.
// Работает строго best-effort: любая ошибка здесь не может откатить
// уже закоммиченный переход, только попасть в лог.
type NotificationListener struct {
	notifier   services.NotifierInterface
	assignment services.AssignmentServiceInterface
	userRepo   repositories.UserRepositoryInterface
	logger     *zap.Logger
}

func NewNotificationListener(
	notifier services.NotifierInterface,
	assignment services.AssignmentServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notifier:   notifier,
		assignment: assignment,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("order.handoff.created", l.handleHandoffCreated)
	l.logger.Info("NotificationListener подписан на событие 'order.handoff.created'")
}

func (l *NotificationListener) handleHandoffCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.HandoffCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	recipient, err := l.userRepo.FindUserByID(ctx, e.Record.RecipientID)
	if err != nil {
		return fmt.Errorf("получатель уведомления не найден: %w", err)
	}

	// Свежая загрузка получателя — из того же селектора, что и
	// ранжирование при назначении.
	var newLoad int64
	candidates, err := l.assignment.RankCandidates(ctx, recipient.Role, e.Order.Kind, nil)
	if err != nil {
		l.logger.Warn("Не удалось посчитать загрузку для уведомления",
			zap.Uint64("recipientID", recipient.ID), zap.Error(err))
	} else {
		for _, c := range candidates {
			if c.UserID == recipient.ID {
				newLoad = c.Load
				break
			}
		}
	}

	return l.notifier.Notify(ctx, recipient.ID, e.Order.Kind, e.Order.AppNumber, newLoad)
}
