package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/orderkind"
)

// AssignmentRepositoryInterface считает текущую загрузку кандидатов.
// Загрузка пользователя = число заявок, у которых последняя запись
// журнала адресована ему И живой статус заявки всё ещё равен
// recipient_status этой записи И заявка активна. Без проверки
// «статус всё ещё совпадает» устаревшие передачи завышали бы загрузку.
type AssignmentRepositoryInterface interface {
	RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error)
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage}
}

func (r *AssignmentRepository) RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.fio, COALESCE(l.current_load, 0) AS current_load
		FROM users u
		LEFT JOIN (
			SELECT lh.recipient_id, COUNT(*) AS current_load
			FROM (%s) lh
			JOIN %s o ON o.id = lh.%s
			WHERE o.is_active AND o.status = lh.recipient_status
			GROUP BY lh.recipient_id
		) l ON l.recipient_id = u.id
		WHERE u.role = $1 AND NOT u.is_blocked`,
		latestHandoffSubquery(d), d.Table, d.LedgerColumn)

	args := []interface{}{role}
	if region != nil {
		query += ` AND u.region = $2`
		args = append(args, *region)
	}
	query += ` ORDER BY current_load ASC, u.fio ASC, u.id ASC`

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчёта загрузки кандидатов: %w", err)
	}
	defer rows.Close()

	candidates := make([]dto.CandidateDTO, 0)
	for rows.Next() {
		var c dto.CandidateDTO
		if err := rows.Scan(&c.UserID, &c.Fio, &c.Load); err != nil {
			return nil, fmt.Errorf("ошибка сканирования кандидата: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
