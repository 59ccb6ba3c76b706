package constants

// --- РОЛИ ПОЛЬЗОВАТЕЛЕЙ (совпадает с кодами в БД) ---
const (
	RoleClient               = "client"
	RoleManager              = "manager"
	RoleJuniorManager        = "junior_manager"
	RoleController           = "controller"
	RoleTechnician           = "technician"
	RoleWarehouse            = "warehouse"
	RoleCallcenterOperator   = "callcenter_operator"
	RoleCallcenterSupervisor = "callcenter_supervisor"
	RoleAdmin                = "admin"
)

var AllRoles = []string{
	RoleClient,
	RoleManager,
	RoleJuniorManager,
	RoleController,
	RoleTechnician,
	RoleWarehouse,
	RoleCallcenterOperator,
	RoleCallcenterSupervisor,
	RoleAdmin,
}

func IsValidRole(code string) bool {
	for _, r := range AllRoles {
		if r == code {
			return true
		}
	}
	return false
}

// --- БИЗНЕС-ТИПЫ ЗАЯВОК (часть номера заявки, например CONN-B2C-0012) ---
const (
	BusinessTypeB2C = "B2C"
	BusinessTypeB2B = "B2B"
)
