package orderkind

import (
	"fmt"

	apperrors "isp-order-system/pkg/errors"
)

// Kind — тип заявки. Три параллельных вида заявок с собственными
// словарями статусов, но одинаковой формой записи.
type Kind string

const (
	Connection Kind = "connection" // подключение абонента
	Technician Kind = "technician" // сервисный выезд техника
	Staff      Kind = "staff"      // заявка, заведённая сотрудником колл-центра
)

// Descriptor описывает вид заявки: таблицу, колонку в журнале передач,
// префикс номера и словарь статусов. Один репозиторий обслуживает все
// три вида через дескриптор — логика не утраивается.
type Descriptor struct {
	Kind          Kind
	Table         string
	LedgerColumn  string
	NumberPrefix  string
	InitialStatus string
	Statuses      []string
}

var descriptors = map[Kind]Descriptor{
	Connection: {
		Kind:          Connection,
		Table:         "connection_orders",
		LedgerColumn:  "connection_order_id",
		NumberPrefix:  "CONN",
		InitialStatus: StatusInManager,
		Statuses: []string{
			StatusInManager,
			StatusInJuniorManager,
			StatusInController,
			StatusBetweenControllerTechnician,
			StatusInTechnician,
			StatusInTechnicianWork,
			StatusInWarehouse,
			StatusCompleted,
		},
	},
	Technician: {
		Kind:          Technician,
		Table:         "technician_orders",
		LedgerColumn:  "technician_order_id",
		NumberPrefix:  "TECH",
		InitialStatus: StatusInController,
		Statuses: []string{
			StatusInController,
			StatusBetweenControllerTechnician,
			StatusInTechnician,
			StatusInTechnicianWork,
			StatusInWarehouse,
			StatusCompleted,
		},
	},
	Staff: {
		Kind:          Staff,
		Table:         "staff_orders",
		LedgerColumn:  "staff_order_id",
		NumberPrefix:  "STAFF",
		InitialStatus: StatusInCallcenterOperator,
		Statuses: []string{
			StatusInCallcenterOperator,
			StatusInCallcenterSupervisor,
			StatusInController,
			StatusBetweenControllerTechnician,
			StatusInTechnician,
			StatusInTechnicianWork,
			StatusInWarehouse,
			StatusCompleted,
		},
	},
}

// Get возвращает дескриптор вида заявки.
func Get(kind Kind) (Descriptor, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("неизвестный вид заявки %q: %w", kind, apperrors.ErrBadRequest)
	}
	return d, nil
}

// Parse разбирает вид заявки из строки (параметр маршрута, колонка БД).
func Parse(s string) (Kind, error) {
	switch Kind(s) {
	case Connection, Technician, Staff:
		return Kind(s), nil
	}
	return "", fmt.Errorf("неизвестный вид заявки %q: %w", s, apperrors.ErrBadRequest)
}

// All перечисляет все виды заявок в стабильном порядке.
func All() []Kind {
	return []Kind{Connection, Technician, Staff}
}

// HasStatus проверяет, входит ли статус в словарь данного вида.
func (d Descriptor) HasStatus(status string) bool {
	for _, s := range d.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
