package entities

import (
	"time"

	"github.com/google/uuid"

	"isp-order-system/internal/orderkind"
)

// HandoffRecord — строка журнала передач. Журнал только пополняется:
// записи никогда не изменяются и не удаляются. Последняя запись по
// заявке определяет, у кого заявка находится сейчас.
type HandoffRecord struct {
	ID        uint64         `json:"id" db:"id"`
	OrderKind orderkind.Kind `json:"order_kind" db:"-"`
	OrderID   uint64         `json:"order_id" db:"-"`

	SenderID    uint64 `json:"sender_id" db:"sender_id"`
	RecipientID uint64 `json:"recipient_id" db:"recipient_id"`

	// Статусы на момент передачи. Статус самой заявки живёт дальше,
	// эти метки фиксируют состояние «как его видели при передаче».
	SenderStatus    string `json:"sender_status" db:"sender_status"`
	RecipientStatus string `json:"recipient_status" db:"recipient_status"`

	TxID      uuid.UUID `json:"tx_id" db:"tx_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
