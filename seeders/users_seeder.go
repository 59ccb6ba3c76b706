package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"isp-order-system/pkg/constants"
)

type testUser struct {
	Fio    string
	Login  string
	Role   string
	Region string
}

var testUsers = []testUser{
	{"Администратор Системы", "admin", constants.RoleAdmin, ""},
	{"Рахимова Мадина Искандаровна", "manager.dushanbe", constants.RoleManager, "Душанбе"},
	{"Саидов Фаррух Давлатович", "manager.khujand", constants.RoleManager, "Худжанд"},
	{"Назарова Нигора Рустамовна", "jmanager.dushanbe", constants.RoleJuniorManager, "Душанбе"},
	{"Шарипов Далер Хуршедович", "jmanager.khujand", constants.RoleJuniorManager, "Худжанд"},
	{"Юсупов Бахтиёр Маруфович", "controller.dushanbe", constants.RoleController, "Душанбе"},
	{"Ганиев Умед Сафарович", "controller.khujand", constants.RoleController, "Худжанд"},
	{"Холов Акбар Мирзоевич", "tech.dushanbe.1", constants.RoleTechnician, "Душанбе"},
	{"Раджабов Сухроб Нозимович", "tech.dushanbe.2", constants.RoleTechnician, "Душанбе"},
	{"Мирзоев Фирдавс Абдулоевич", "tech.khujand.1", constants.RoleTechnician, "Худжанд"},
	{"Курбонова Зарина Хамидовна", "warehouse.dushanbe", constants.RoleWarehouse, "Душанбе"},
	{"Исмоилова Шахноза Баховаддиновна", "cc.operator.1", constants.RoleCallcenterOperator, ""},
	{"Давлатов Парвиз Шодиевич", "cc.operator.2", constants.RoleCallcenterOperator, ""},
	{"Азимова Мунира Джамшедовна", "cc.supervisor", constants.RoleCallcenterSupervisor, ""},
	{"Клиент Тестовый Первый", "client.1", constants.RoleClient, "Душанбе"},
	{"Клиент Тестовый Второй", "client.2", constants.RoleClient, "Худжанд"},
}

const defaultPassword = "password123"

// seedUsers создает по несколько пользователей на каждую роль маршрута.
// Пароль у всех одинаковый, это сидер для дев-стенда.
func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание тестовых пользователей...")

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	for _, u := range testUsers {
		var region interface{}
		if u.Region != "" {
			region = u.Region
		}
		_, err := db.Exec(ctx, `
			INSERT INTO users (fio, login, password, role, region, is_blocked, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
			ON CONFLICT (login) DO NOTHING`,
			u.Fio, u.Login, string(hash), u.Role, region)
		if err != nil {
			return fmt.Errorf("пользователь %s: %w", u.Login, err)
		}
	}

	log.Printf("    -> Пользователей в сидере: %d (пароль у всех: %s)", len(testUsers), defaultPassword)
	return nil
}
