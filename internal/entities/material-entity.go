package entities

import (
	"time"

	"isp-order-system/internal/orderkind"
)

// Material — складская позиция. Расходуется только на рёбрах
// обмена со складом, алгоритм — простой декремент/возврат.
type Material struct {
	ID       uint64 `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Quantity int64  `json:"quantity" db:"quantity"`
}

// MaterialRequest — резерв материала под конкретную заявку.
type MaterialRequest struct {
	ID         uint64         `json:"id" db:"id"`
	OrderKind  orderkind.Kind `json:"order_kind" db:"-"`
	OrderID    uint64         `json:"order_id" db:"-"`
	MaterialID uint64         `json:"material_id" db:"material_id"`
	Quantity   int64          `json:"quantity" db:"quantity"`
	Released   bool           `json:"released" db:"released"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
