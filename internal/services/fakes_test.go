package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"isp-order-system/internal/dto"
	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	apperrors "isp-order-system/pkg/errors"
)

// Фейки хранилищ для юнит-тестов сервисного слоя: состояние в памяти,
// транзакция — no-op. Семантика (копии при чтении, проверка is_active
// перед записью в журнал) повторяет договорённости настоящих репозиториев.

type fakeTxManager struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// --- Заявки ---

type memOrderRepo struct {
	orders   map[orderkind.Kind]map[uint64]*entities.Order
	nextID   uint64
	counters map[string]uint64

	findForUpdateCalls int
	// Хук имитирует чужой закоммиченный переход между чтением и блокировкой.
	onFindForUpdate func(stored *entities.Order)
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:   make(map[orderkind.Kind]map[uint64]*entities.Order),
		counters: make(map[string]uint64),
	}
}

func (r *memOrderRepo) stored(kind orderkind.Kind, id uint64) (*entities.Order, error) {
	o, ok := r.orders[kind][id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) CreateInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) (uint64, error) {
	d, err := orderkind.Get(order.Kind)
	if err != nil {
		return 0, err
	}
	if !d.HasStatus(order.Status) {
		return 0, apperrors.ErrInvalidStatus
	}

	r.nextID++
	stored := *order
	stored.ID = r.nextID
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt

	if r.orders[order.Kind] == nil {
		r.orders[order.Kind] = make(map[uint64]*entities.Order)
	}
	r.orders[order.Kind][stored.ID] = &stored
	return stored.ID, nil
}

func (r *memOrderRepo) NextAppNumberInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, businessType string) (string, error) {
	d, err := orderkind.Get(kind)
	if err != nil {
		return "", err
	}
	key := string(kind) + ":" + businessType
	r.counters[key]++
	return fmt.Sprintf("%s-%s-%04d", d.NumberPrefix, businessType, r.counters[key]), nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, kind orderkind.Kind, id uint64) (*entities.Order, error) {
	o, err := r.stored(kind, id)
	if err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64) (*entities.Order, error) {
	o, err := r.stored(kind, id)
	if err != nil {
		return nil, err
	}
	r.findForUpdateCalls++
	if r.onFindForUpdate != nil {
		r.onFindForUpdate(o)
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) SetStatusInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, status string) error {
	o, err := r.stored(kind, id)
	if err != nil {
		return err
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *memOrderRepo) SetActiveInTx(ctx context.Context, tx pgx.Tx, kind orderkind.Kind, id uint64, active bool) error {
	o, err := r.stored(kind, id)
	if err != nil {
		return err
	}
	o.IsActive = active
	o.UpdatedAt = time.Now()
	return nil
}

func (r *memOrderRepo) List(ctx context.Context, kind orderkind.Kind, limit, offset uint64) ([]entities.Order, uint64, error) {
	var all []entities.Order
	for _, o := range r.orders[kind] {
		all = append(all, *o)
	}
	total := uint64(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// --- Журнал передач ---

type memHandoffRepo struct {
	records []entities.HandoffRecord
	nextID  uint64
	orders  *memOrderRepo
}

func newMemHandoffRepo(orders *memOrderRepo) *memHandoffRepo {
	return &memHandoffRepo{orders: orders}
}

func (r *memHandoffRepo) AppendInTx(ctx context.Context, tx pgx.Tx, rec *entities.HandoffRecord) error {
	d, err := orderkind.Get(rec.OrderKind)
	if err != nil {
		return err
	}
	if !d.HasStatus(rec.SenderStatus) || !d.HasStatus(rec.RecipientStatus) {
		return apperrors.ErrInvalidStatus
	}

	o, err := r.orders.stored(rec.OrderKind, rec.OrderID)
	if err != nil {
		return err
	}
	if !o.IsActive {
		return apperrors.ErrOrderClosed
	}

	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	r.records = append(r.records, *rec)
	return nil
}

func (r *memHandoffRepo) Append(ctx context.Context, rec *entities.HandoffRecord) error {
	return r.AppendInTx(ctx, nil, rec)
}

func (r *memHandoffRepo) LatestFor(ctx context.Context, ref entities.OrderRef) (*entities.HandoffRecord, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OrderKind == ref.Kind && r.records[i].OrderID == ref.ID {
			cp := r.records[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memHandoffRepo) History(ctx context.Context, ref entities.OrderRef, limit, offset uint64) ([]entities.HandoffRecord, error) {
	var history []entities.HandoffRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].OrderKind == ref.Kind && r.records[i].OrderID == ref.ID {
			history = append(history, r.records[i])
		}
	}
	if offset >= uint64(len(history)) {
		return nil, nil
	}
	history = history[offset:]
	if uint64(len(history)) > limit {
		history = history[:limit]
	}
	return history, nil
}

// --- Пользователи ---

type memUserRepo struct {
	users map[uint64]*entities.User
}

func newMemUserRepo(users ...*entities.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint64]*entities.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *entities.User) (uint64, error) {
	id := uint64(len(r.users) + 1)
	user.ID = id
	r.users[id] = user
	return id, nil
}

// --- Склад ---

type memMaterialRepo struct {
	requests   []entities.MaterialRequest
	reserved   []entities.OrderRef
	released   []entities.OrderRef
	reserveErr error
}

func (r *memMaterialRepo) CreateRequest(ctx context.Context, req *entities.MaterialRequest) (uint64, error) {
	r.requests = append(r.requests, *req)
	return uint64(len(r.requests)), nil
}

func (r *memMaterialRepo) ReserveInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	r.reserved = append(r.reserved, ref)
	return nil
}

func (r *memMaterialRepo) ReleaseInTx(ctx context.Context, tx pgx.Tx, ref entities.OrderRef) error {
	r.released = append(r.released, ref)
	return nil
}

// --- Кеш ---

type memCache struct {
	data    map[string]string
	deleted []string
	sets    int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.data[key] = fmt.Sprintf("%v", value)
	c.sets++
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", fmt.Errorf("ключ %q отсутствует в кеше", key)
	}
	return v, nil
}

func (c *memCache) Del(ctx context.Context, key ...string) error {
	for _, k := range key {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

// --- Селектор назначений (для тестов диспетчера заявок) ---

type fakeAssignment struct {
	// Ключ "" — рейтинг без фильтра по региону.
	byRegion map[string][]dto.CandidateDTO
	err      error
}

func (f *fakeAssignment) RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := ""
	if region != nil {
		key = *region
	}
	return f.byRegion[key], nil
}

// --- Репозиторий рейтинга (для тестов селектора) ---

type memAssignmentRepo struct {
	candidates []dto.CandidateDTO
	calls      int
	err        error
}

func (r *memAssignmentRepo) RankCandidates(ctx context.Context, role string, kind orderkind.Kind, region *string) ([]dto.CandidateDTO, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]dto.CandidateDTO, len(r.candidates))
	copy(out, r.candidates)
	return out, nil
}
