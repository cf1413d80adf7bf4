package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// MemoryRepository хранит заказы в памяти процесса. Наружу отдаются только копии,
// запись по устаревшей ревизии отклоняется.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
	ids    []string
	seq    int
}

// NewMemoryRepository создаёт пустое хранилище заказов в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]*model.Order),
	}
}

// Close ничего не делает и нужен для совместимости с интерфейсом хранилища.
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateOrder сохраняет новый заказ, назначая ему идентификатор и первую ревизию.
func (r *MemoryRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := ""
	for id == "" || r.orders[id] != nil {
		r.seq++
		id = FormatOrderID(int64(r.seq))
	}

	o.ID = id
	o.Revision = 1
	r.orders[id] = o.Clone()
	r.ids = append(r.ids, id)

	return nil
}

// GetOrder возвращает копию заказа по идентификатору.
func (r *MemoryRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", model.ErrNotFound, id)
	}
	return o.Clone(), nil
}

// ListOrders возвращает копии всех заказов в порядке создания.
func (r *MemoryRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.Order, 0, len(r.ids))
	for _, id := range r.ids {
		res = append(res, *r.orders[id].Clone())
	}
	return res, nil
}

// SaveOrder сохраняет изменённый заказ. Ревизия o должна совпадать с сохранённой;
// после записи она увеличивается на единицу.
func (r *MemoryRepository) SaveOrder(ctx context.Context, o *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[o.ID]
	if !ok {
		return fmt.Errorf("%w: order %s", model.ErrNotFound, o.ID)
	}
	if stored.Revision != o.Revision {
		return fmt.Errorf("%w: order %s has revision %d, got %d", model.ErrStaleRevision, o.ID, stored.Revision, o.Revision)
	}
	if len(o.Timeline) < len(stored.Timeline) {
		return fmt.Errorf("save order %s: timeline is append-only", o.ID)
	}

	o.Revision++
	r.orders[o.ID] = o.Clone()
	return nil
}
