package orderkind

// --- СТАТУСЫ ЗАЯВОК (совпадает с кодами в БД) ---
//
// Статус фиксирует, у какой роли заявка находится в данный момент.
// Флаг is_active живёт отдельно: is_active=false означает отмену
// и терминален независимо от статуса.
const (
	StatusInManager                   = "in_manager"
	StatusInJuniorManager             = "in_junior_manager"
	StatusInController                = "in_controller"
	StatusBetweenControllerTechnician = "between_controller_technician"
	StatusInTechnician                = "in_technician"
	StatusInTechnicianWork            = "in_technician_work"
	StatusInWarehouse                 = "in_warehouse"
	StatusInCallcenterOperator        = "in_callcenter_operator"
	StatusInCallcenterSupervisor      = "in_callcenter_supervisor"
	StatusCompleted                   = "completed"
)

// Финальные статусы
var FinalStatuses = []string{
	StatusCompleted,
}

func IsFinalStatus(code string) bool {
	for _, s := range FinalStatuses {
		if s == code {
			return true
		}
	}
	return false
}
