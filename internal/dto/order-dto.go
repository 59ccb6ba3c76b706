package dto

// CreateOrderDTO — входные данные на создание заявки любого вида.
type CreateOrderDTO struct {
	Kind         string  `json:"kind" validate:"required,oneof=connection technician staff"`
	BusinessType string  `json:"business_type" validate:"required,oneof=B2C B2B"`
	ClientID     uint64  `json:"client_id" validate:"required"`
	Address      string  `json:"address" validate:"required"`
	Region       string  `json:"region" validate:"required"`
	TariffRef    *string `json:"tariff_ref,omitempty"`
}

// TransitionOrderDTO — запрос на перевод заявки по ребру графа.
type TransitionOrderDTO struct {
	TargetStatus string `json:"target_status" validate:"required"`
	RecipientID  uint64 `json:"recipient_id" validate:"required"`
}

// MaterialRequestDTO — запрос материалов под заявку перед визитом на склад.
type MaterialRequestDTO struct {
	MaterialID uint64 `json:"material_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0"`
}

type OrderDTO struct {
	ID        uint64  `json:"id"`
	Kind      string  `json:"kind"`
	AppNumber string  `json:"app_number"`
	ClientID  uint64  `json:"client_id"`
	Address   string  `json:"address"`
	Region    string  `json:"region"`
	TariffRef *string `json:"tariff_ref,omitempty"`
	Status    string  `json:"status"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ShortUserDTO struct {
	ID   uint64 `json:"id"`
	Fio  string `json:"fio"`
	Role string `json:"role,omitempty"`
}
