package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
)

// InboxItem — заявка вместе с последней передачей по ней.
type InboxItem struct {
	Order   entities.Order
	Handoff entities.HandoffRecord
}

// InboxRepositoryInterface — читающая сторона учёта кастодии: «заявки,
// лежащие сейчас у меня». Использует тот же предикат «последняя запись
// журнала И статус всё ещё совпадает», что и расчёт загрузки, поэтому
// размер инбокса всегда равен загрузке из селектора назначений.
type InboxRepositoryInterface interface {
	InboxFor(ctx context.Context, userID uint64, kind orderkind.Kind, region *string, limit, offset uint64) ([]InboxItem, error)
}

type InboxRepository struct {
	storage *pgxpool.Pool
}

func NewInboxRepository(storage *pgxpool.Pool) InboxRepositoryInterface {
	return &InboxRepository{storage: storage}
}

func (r *InboxRepository) InboxFor(ctx context.Context, userID uint64, kind orderkind.Kind, region *string, limit, offset uint64) ([]InboxItem, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return nil, err
	}

	builder := sq.Select(
		"o.id", "o.app_number", "o.client_id", "o.address", "o.region",
		"o.tariff_ref", "o.status", "o.is_active", "o.created_at", "o.updated_at",
		"lh.id", "lh.sender_id", "lh.recipient_id",
		"lh.sender_status", "lh.recipient_status", "lh.tx_id", "lh.created_at",
	).
		From(fmt.Sprintf("(%s) lh", latestHandoffSubquery(d))).
		Join(fmt.Sprintf("%s o ON o.id = lh.%s", d.Table, d.LedgerColumn)).
		Where(sq.Eq{"lh.recipient_id": userID}).
		Where("o.is_active").
		Where("o.status = lh.recipient_status").
		OrderBy("lh.created_at DESC", "lh.id DESC").
		Limit(limit).Offset(offset).
		PlaceholderFormat(sq.Dollar)

	if region != nil {
		builder = builder.Where(sq.Eq{"o.region": *region})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса инбокса: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения инбокса: %w", err)
	}
	defer rows.Close()

	items := make([]InboxItem, 0)
	for rows.Next() {
		var it InboxItem
		it.Order.Kind = kind
		it.Handoff.OrderKind = kind
		if err := rows.Scan(
			&it.Order.ID, &it.Order.AppNumber, &it.Order.ClientID, &it.Order.Address, &it.Order.Region,
			&it.Order.TariffRef, &it.Order.Status, &it.Order.IsActive, &it.Order.CreatedAt, &it.Order.UpdatedAt,
			&it.Handoff.ID, &it.Handoff.SenderID, &it.Handoff.RecipientID,
			&it.Handoff.SenderStatus, &it.Handoff.RecipientStatus, &it.Handoff.TxID, &it.Handoff.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки инбокса: %w", err)
		}
		it.Handoff.OrderID = it.Order.ID
		items = append(items, it)
	}
	return items, rows.Err()
}
