package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"isp-order-system/internal/orderkind"
)

// Order — запись заявки. Одна форма для трёх видов (подключение,
// сервисный выезд, заявка сотрудника), вид определяет таблицу и
// словарь статусов через orderkind.Descriptor.
type Order struct {
	ID        uint64         `json:"id" db:"id"`
	Kind      orderkind.Kind `json:"kind" db:"-"`
	AppNumber string         `json:"app_number" db:"app_number"`

	ClientID  uint64      `json:"client_id" db:"client_id"`
	Address   string      `json:"address" db:"address"`
	Region    string      `json:"region" db:"region"`
	TariffRef null.String `json:"tariff_ref,omitempty" db:"tariff_ref"`

	Status   string `json:"status" db:"status"`
	IsActive bool   `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrderRef адресует заявку: вид + id.
type OrderRef struct {
	Kind orderkind.Kind `json:"kind"`
	ID   uint64         `json:"id"`
}
