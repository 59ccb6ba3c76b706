package events

import (
	"isp-order-system/internal/entities"
)

// HandoffCreatedEvent публикуется после коммита перехода. Всё, что
// слушает это событие (уведомления), работает best-effort и не влияет
// на консистентность самого перехода.
type HandoffCreatedEvent struct {
	Order  entities.Order
	Record entities.HandoffRecord
}

func (e HandoffCreatedEvent) Name() string {
	return "order.handoff.created"
}
