package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isp-order-system/internal/entities"
	apperrors "isp-order-system/pkg/errors"
)

// MaterialRepositoryInterface — складской учёт. Используется движком
// переходов только на рёбрах обмена со складом: резерв на входе,
// возврат на выходе. Алгоритм — простой декремент/возврат остатка.
type MaterialRepositoryInterface interface {
	CreateRequest(ctx context.Context, req *entities.MaterialRequest) (uint64, error)
	ReserveInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error
	ReleaseInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error
}

type MaterialRepository struct {
	storage *pgxpool.Pool
}

func NewMaterialRepository(storage *pgxpool.Pool) MaterialRepositoryInterface {
	return &MaterialRepository{storage: storage}
}

func (r *MaterialRepository) CreateRequest(ctx context.Context, req *entities.MaterialRequest) (uint64, error) {
	query := `
		INSERT INTO material_requests (order_kind, order_id, material_id, quantity, released, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id`

	var id uint64
	if err := r.storage.QueryRow(ctx, query,
		string(req.OrderKind), req.OrderID, req.MaterialID, req.Quantity,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания запроса материалов: %w", err)
	}
	return id, nil
}

// ReserveInTx списывает остатки под все невыданные запросы заявки.
// Проверка остатка и декремент — одним UPDATE, чтобы остаток не ушёл
// в минус при конкурентных резервах.
func (r *MaterialRepository) ReserveInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error {
	rows, err := tx.Query(ctx, `
		SELECT id, material_id, quantity FROM material_requests
		WHERE order_kind = $1 AND order_id = $2 AND NOT released
		ORDER BY id`, string(ref.Kind), ref.ID)
	if err != nil {
		return fmt.Errorf("ошибка чтения запросов материалов: %w", err)
	}

	type pending struct {
		id, materialID uint64
		quantity       int64
	}
	var requests []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.materialID, &p.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("ошибка сканирования запроса материалов: %w", err)
		}
		requests = append(requests, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, req := range requests {
		tag, err := tx.Exec(ctx, `
			UPDATE materials SET quantity = quantity - $1
			WHERE id = $2 AND quantity >= $1`, req.quantity, req.materialID)
		if err != nil {
			return fmt.Errorf("ошибка резервирования материала %d: %w", req.materialID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("материал %d: %w", req.materialID, apperrors.ErrInsufficientMaterials)
		}
	}
	return nil
}

// ReleaseInTx возвращает зарезервированные остатки и помечает запросы выданными.
func (r *MaterialRepository) ReleaseInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error {
	_, err := tx.Exec(ctx, `
		UPDATE materials m SET quantity = m.quantity + mr.quantity
		FROM material_requests mr
		WHERE mr.material_id = m.id
		  AND mr.order_kind = $1 AND mr.order_id = $2 AND NOT mr.released`,
		string(ref.Kind), ref.ID)
	if err != nil {
		return fmt.Errorf("ошибка возврата материалов: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE material_requests SET released = TRUE
		WHERE order_kind = $1 AND order_id = $2 AND NOT released`,
		string(ref.Kind), ref.ID)
	if err != nil {
		return fmt.Errorf("ошибка пометки запросов материалов: %w", err)
	}
	return nil
}
