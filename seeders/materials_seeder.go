package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type stockItem struct {
	Name     string
	Quantity int64
}

var stockItems = []stockItem{
	{"Кабель UTP cat5e (м)", 5000},
	{"Кабель оптический drop (м)", 3000},
	{"Роутер абонентский", 120},
	{"ONU-терминал", 80},
	{"Коннектор RJ-45 (уп. 100 шт)", 50},
	{"Сплиттер 1x8", 40},
	{"Крепёж настенный (уп.)", 200},
}

// seedMaterials наполняет склад стартовыми остатками.
func seedMaterials(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение складских остатков...")

	for _, item := range stockItems {
		_, err := db.Exec(ctx, `
			INSERT INTO materials (name, quantity)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`,
			item.Name, item.Quantity)
		if err != nil {
			return fmt.Errorf("позиция %q: %w", item.Name, err)
		}
	}
	return nil
}
