package statemachine

import (
	"isp-order-system/internal/orderkind"
	"isp-order-system/pkg/constants"
)

// Edge — разрешённое ребро графа статусов: кто (роль) имеет право
// выполнить переход и какой роли заявка передаётся по умолчанию.
type Edge struct {
	From string
	To   string
	// Role — роль, которой разрешено выполнить переход.
	Role string
	// NextRole — роль получателя по умолчанию (куда уходит заявка).
	NextRole string
	// EnterWarehouse/ExitWarehouse помечают рёбра обмена со складом:
	// на входе резервируются материалы, на выходе — освобождаются.
	EnterWarehouse bool
	ExitWarehouse  bool
}

// Общий «хвост» маршрута: контролёр → техник → работа → (склад) → завершение.
// Все три вида заявок сходятся на нём, различаются только входные звенья.
var commonTail = []Edge{
	{
		From:     orderkind.StatusInController,
		To:       orderkind.StatusBetweenControllerTechnician,
		Role:     constants.RoleController,
		NextRole: constants.RoleTechnician,
	},
	{
		From:     orderkind.StatusBetweenControllerTechnician,
		To:       orderkind.StatusInTechnician,
		Role:     constants.RoleTechnician,
		NextRole: constants.RoleTechnician,
	},
	{
		From:     orderkind.StatusInTechnician,
		To:       orderkind.StatusInTechnicianWork,
		Role:     constants.RoleTechnician,
		NextRole: constants.RoleTechnician,
	},
	{
		From:           orderkind.StatusInTechnicianWork,
		To:             orderkind.StatusInWarehouse,
		Role:           constants.RoleTechnician,
		NextRole:       constants.RoleWarehouse,
		EnterWarehouse: true,
	},
	{
		From:          orderkind.StatusInWarehouse,
		To:            orderkind.StatusInTechnicianWork,
		Role:          constants.RoleWarehouse,
		NextRole:      constants.RoleTechnician,
		ExitWarehouse: true,
	},
	{
		From:     orderkind.StatusInTechnicianWork,
		To:       orderkind.StatusCompleted,
		Role:     constants.RoleTechnician,
		NextRole: constants.RoleTechnician,
	},
}

var graphs = map[orderkind.Kind][]Edge{
	orderkind.Connection: append([]Edge{
		{
			From:     orderkind.StatusInManager,
			To:       orderkind.StatusInJuniorManager,
			Role:     constants.RoleManager,
			NextRole: constants.RoleJuniorManager,
		},
		{
			From:     orderkind.StatusInJuniorManager,
			To:       orderkind.StatusInController,
			Role:     constants.RoleJuniorManager,
			NextRole: constants.RoleController,
		},
	}, commonTail...),

	// Сервисные заявки техника заводятся сразу на контролёра.
	orderkind.Technician: commonTail,

	orderkind.Staff: append([]Edge{
		{
			From:     orderkind.StatusInCallcenterOperator,
			To:       orderkind.StatusInCallcenterSupervisor,
			Role:     constants.RoleCallcenterOperator,
			NextRole: constants.RoleCallcenterSupervisor,
		},
		{
			From:     orderkind.StatusInCallcenterSupervisor,
			To:       orderkind.StatusInController,
			Role:     constants.RoleCallcenterSupervisor,
			NextRole: constants.RoleController,
		},
	}, commonTail...),
}

// EdgeFor возвращает ребро (from -> to) для данного вида заявки.
func EdgeFor(kind orderkind.Kind, from, to string) (Edge, bool) {
	for _, e := range graphs[kind] {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// OutgoingFrom перечисляет рёбра, исходящие из статуса.
func OutgoingFrom(kind orderkind.Kind, from string) []Edge {
	var out []Edge
	for _, e := range graphs[kind] {
		if e.From == from {
			out = append(out, e)
		}
	}
	return out
}

// IsTerminal — у терминального статуса нет исходящих рёбер.
func IsTerminal(kind orderkind.Kind, status string) bool {
	return len(OutgoingFrom(kind, status)) == 0
}
