package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	apperrors "isp-order-system/pkg/errors"
)

// HandoffRepositoryInterface — журнал передач. Только append, никаких
// update/delete: кто сейчас держит заявку, выводится из последней записи.
type HandoffRepositoryInterface interface {
	Append(ctx context.Context, rec *entities.HandoffRecord) error
	AppendInTx(ctx context.Context, tx pgx.Tx, rec *entities.HandoffRecord) error
	LatestFor(ctx context.Context, ref entities.OrderRef) (*entities.HandoffRecord, error)
	History(ctx context.Context, ref entities.OrderRef, limit, offset uint64) ([]entities.HandoffRecord, error)
}

type HandoffRepository struct {
	storage *pgxpool.Pool
}

func NewHandoffRepository(storage *pgxpool.Pool) HandoffRepositoryInterface {
	return &HandoffRepository{storage: storage}
}

const handoffColumns = `id, connection_order_id, technician_order_id, staff_order_id, sender_id, recipient_id, sender_status, recipient_status, tx_id, created_at`

// latestHandoffSubquery — единственное место, где формулируется
// «последняя запись журнала на заявку». Селектор назначений и инбокс
// строятся поверх этого же фрагмента, чтобы расчёты не расходились.
func latestHandoffSubquery(d orderkind.Descriptor) string {
	return fmt.Sprintf(`
		SELECT DISTINCT ON (h.%[1]s) h.%[2]s
		FROM order_handoffs h
		WHERE h.%[1]s IS NOT NULL
		ORDER BY h.%[1]s, h.created_at DESC, h.id DESC`,
		d.LedgerColumn, handoffColumns)
}

func scanHandoff(row pgx.Row) (*entities.HandoffRecord, error) {
	var rec entities.HandoffRecord
	var connID, techID, staffID sql.NullInt64
	err := row.Scan(
		&rec.ID, &connID, &techID, &staffID,
		&rec.SenderID, &rec.RecipientID,
		&rec.SenderStatus, &rec.RecipientStatus,
		&rec.TxID, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	switch {
	case connID.Valid:
		rec.OrderKind, rec.OrderID = orderkind.Connection, uint64(connID.Int64)
	case techID.Valid:
		rec.OrderKind, rec.OrderID = orderkind.Technician, uint64(techID.Int64)
	case staffID.Valid:
		rec.OrderKind, rec.OrderID = orderkind.Staff, uint64(staffID.Int64)
	}
	return &rec, nil
}

// AppendInTx дописывает запись журнала в рамках транзакции движка.
// Перед вставкой проверяет словарь статусов и что заявка ещё активна.
func (r *HandoffRepository) AppendInTx(ctx context.Context, tx pgx.Tx, rec *entities.HandoffRecord) error {
	d, err := orderkind.Get(rec.OrderKind)
	if err != nil {
		return err
	}
	if !d.HasStatus(rec.SenderStatus) {
		return fmt.Errorf("sender_status %q: %w", rec.SenderStatus, apperrors.ErrInvalidStatus)
	}
	if !d.HasStatus(rec.RecipientStatus) {
		return fmt.Errorf("recipient_status %q: %w", rec.RecipientStatus, apperrors.ErrInvalidStatus)
	}

	var isActive bool
	checkQuery := fmt.Sprintf(`SELECT is_active FROM %s WHERE id = $1`, d.Table)
	if err := tx.QueryRow(ctx, checkQuery, rec.OrderID).Scan(&isActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("ошибка проверки заявки перед записью в журнал: %w", err)
	}
	if !isActive {
		return apperrors.ErrOrderClosed
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO order_handoffs (%s, sender_id, recipient_id, sender_status, recipient_status, tx_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`, d.LedgerColumn)

	if err := tx.QueryRow(ctx, insertQuery,
		rec.OrderID, rec.SenderID, rec.RecipientID,
		rec.SenderStatus, rec.RecipientStatus, rec.TxID,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("ошибка записи в журнал передач: %w", err)
	}
	return nil
}

func (r *HandoffRepository) Append(ctx context.Context, rec *entities.HandoffRecord) error {
	return pgx.BeginFunc(ctx, r.storage, func(tx pgx.Tx) error {
		return r.AppendInTx(ctx, tx, rec)
	})
}

// LatestFor возвращает последнюю передачу по заявке; (nil, nil) —
// по заявке ещё не было ни одной передачи.
func (r *HandoffRepository) LatestFor(ctx context.Context, ref entities.OrderRef) (*entities.HandoffRecord, error) {
	d, err := orderkind.Get(ref.Kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM order_handoffs
		WHERE %s = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, handoffColumns, d.LedgerColumn)

	rec, err := scanHandoff(r.storage.QueryRow(ctx, query, ref.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения последней передачи: %w", err)
	}
	return rec, nil
}

// History — журнал по заявке, новые записи первыми.
func (r *HandoffRepository) History(ctx context.Context, ref entities.OrderRef, limit, offset uint64) ([]entities.HandoffRecord, error) {
	d, err := orderkind.Get(ref.Kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM order_handoffs
		WHERE %s = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, handoffColumns, d.LedgerColumn)

	rows, err := r.storage.Query(ctx, query, ref.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала передач: %w", err)
	}
	defer rows.Close()

	history := make([]entities.HandoffRecord, 0)
	for rows.Next() {
		rec, err := scanHandoff(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		history = append(history, *rec)
	}
	return history, rows.Err()
}
