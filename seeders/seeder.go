package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedAll наполняет БД тестовыми пользователями всех ролей и
// складскими позициями. Сидеры идемпотентны, повторный запуск безопасен.
func SeedAll(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения БД...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения пользователей: %v", err)
	}
	if err := seedMaterials(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения склада: %v", err)
	}

	log.Println("✅ Наполнение БД завершено!")
}
