package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	apperrors "isp-order-system/pkg/errors"
)

// OrderRepositoryInterface — «тупой» типизированный слой хранения заявок.
// Легальность переходов здесь не проверяется, это работа движка переходов.
type OrderRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error)
	NextAppNumberInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, businessType string) (string, error)
	FindByID(ctx context.Context, kind orderkind.Kind, id uint64) (*entities.Order, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64) (*entities.Order, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, status string) error
	SetActiveInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, active bool) error
	List(ctx context.Context, kind orderkind.Kind, limit, offset uint64) ([]entities.Order, uint64, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

const orderColumns = `id, app_number, client_id, address, region, tariff_ref, status, is_active, created_at, updated_at`

// Имя таблицы подставляется из дескриптора вида заявки — это фиксированный
// словарь, а не пользовательский ввод.
func scanOrder(row pgx.Row, kind orderkind.Kind) (*entities.Order, error) {
	var o entities.Order
	o.Kind = kind
	err := row.Scan(
		&o.ID, &o.AppNumber, &o.ClientID, &o.Address, &o.Region,
		&o.TariffRef, &o.Status, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) CreateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error) {
	d, err := orderkind.Get(order.Kind)
	if err != nil {
		return 0, err
	}
	if !d.HasStatus(order.Status) {
		return 0, fmt.Errorf("статус %q: %w", order.Status, apperrors.ErrInvalidStatus)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (app_number, client_id, address, region, tariff_ref, status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id`, d.Table)

	var newID uint64
	if err := tx.QueryRow(ctx, query,
		order.AppNumber, order.ClientID, order.Address, order.Region,
		order.TariffRef, order.Status,
	).Scan(&newID); err != nil {
		return 0, fmt.Errorf("ошибка создания заявки в %s: %w", d.Table, err)
	}
	return newID, nil
}

// NextAppNumberInTx выдаёт следующий номер заявки вида CONN-B2C-0012.
// Счётчик инкрементируется атомарно в той же транзакции, что и вставка.
func (r *OrderRepository) NextAppNumberInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, businessType string) (string, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO app_number_counters (kind, business_type, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, business_type)
		DO UPDATE SET last_value = app_number_counters.last_value + 1
		RETURNING last_value`

	var seq uint64
	if err := tx.QueryRow(ctx, query, string(kind), businessType).Scan(&seq); err != nil {
		return "", fmt.Errorf("ошибка получения номера заявки: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", d.NumberPrefix, businessType, seq), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, kind orderkind.Kind, id uint64) (*entities.Order, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, orderColumns, d.Table)
	return scanOrder(r.storage.QueryRow(ctx, query, id), kind)
}

// FindForUpdateInTx блокирует строку заявки на время транзакции.
// Блокировка строчная: переходы по разным заявкам друг друга не ждут.
func (r *OrderRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64) (*entities.Order, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, orderColumns, d.Table)
	return scanOrder(tx.QueryRow(ctx, query, id), kind)
}

func (r *OrderRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, status string) error {
	d, err := orderkind.Get(kind)
	if err != nil {
		return err
	}
	if !d.HasStatus(status) {
		return fmt.Errorf("статус %q: %w", status, apperrors.ErrInvalidStatus)
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2`, d.Table)
	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) SetActiveInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, active bool) error {
	d, err := orderkind.Get(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET is_active = $1, updated_at = NOW() WHERE id = $2`, d.Table)
	tag, err := tx.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("ошибка изменения флага is_active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context, kind orderkind.Kind, limit, offset uint64) ([]entities.Order, uint64, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, d.Table)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, orderColumns, d.Table)
	rows, err := r.storage.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		var o entities.Order
		o.Kind = kind
		if err := rows.Scan(
			&o.ID, &o.AppNumber, &o.ClientID, &o.Address, &o.Region,
			&o.TariffRef, &o.Status, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}
