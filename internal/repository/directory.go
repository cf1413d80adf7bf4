package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// MemoryDirectory хранит справочники ресторана: сотрудников, гостей и кампании.
type MemoryDirectory struct {
	mu        sync.RWMutex
	staff     []model.Staff
	customers []model.Customer
	campaigns []model.Campaign
}

// NewMemoryDirectory создаёт пустой справочник.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{}
}

// AddStaff добавляет сотрудников в справочник.
func (d *MemoryDirectory) AddStaff(staff ...model.Staff) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range staff {
		d.staff = append(d.staff, model.CloneStaff(s))
	}
}

// AddCustomers добавляет гостей в справочник.
func (d *MemoryDirectory) AddCustomers(customers ...model.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range customers {
		d.customers = append(d.customers, cloneCustomer(c))
	}
}

// AddCampaigns добавляет кампании в справочник.
func (d *MemoryDirectory) AddCampaigns(campaigns ...model.Campaign) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range campaigns {
		d.campaigns = append(d.campaigns, cloneCampaign(c))
	}
}

// Staff возвращает копии всех сотрудников.
func (d *MemoryDirectory) Staff(ctx context.Context) ([]model.Staff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	res := make([]model.Staff, 0, len(d.staff))
	for _, s := range d.staff {
		res = append(res, model.CloneStaff(s))
	}
	return res, nil
}

// Customers возвращает копии всех гостей.
func (d *MemoryDirectory) Customers(ctx context.Context) ([]model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	res := make([]model.Customer, 0, len(d.customers))
	for _, c := range d.customers {
		res = append(res, cloneCustomer(c))
	}
	return res, nil
}

// Campaigns возвращает копии всех кампаний.
func (d *MemoryDirectory) Campaigns(ctx context.Context) ([]model.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	res := make([]model.Campaign, 0, len(d.campaigns))
	for _, c := range d.campaigns {
		res = append(res, cloneCampaign(c))
	}
	return res, nil
}

// UpdateChef применяет fn к копии повара и сохраняет её, если fn завершилась без ошибки.
// Сотрудник, не являющийся поваром, считается не найденным.
func (d *MemoryDirectory) UpdateChef(ctx context.Context, id string, fn func(c *model.Chef) error) (*model.Chef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := slices.IndexFunc(d.staff, func(s model.Staff) bool { return s.Info().ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: chef %s", model.ErrNotFound, id)
	}
	if _, ok := d.staff[idx].(*model.Chef); !ok {
		return nil, fmt.Errorf("%w: chef %s", model.ErrNotFound, id)
	}

	cp := model.CloneStaff(d.staff[idx]).(*model.Chef)
	if err := fn(cp); err != nil {
		return nil, err
	}
	d.staff[idx] = cp

	return model.CloneStaff(cp).(*model.Chef), nil
}

// UpdateCustomer применяет fn к копии гостя и сохраняет её, если fn завершилась без ошибки.
func (d *MemoryDirectory) UpdateCustomer(ctx context.Context, id string, fn func(c *model.Customer) error) (model.Customer, error) {
	if err := ctx.Err(); err != nil {
		return model.Customer{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := slices.IndexFunc(d.customers, func(c model.Customer) bool { return c.ID == id })
	if idx < 0 {
		return model.Customer{}, fmt.Errorf("%w: customer %s", model.ErrNotFound, id)
	}

	cp := cloneCustomer(d.customers[idx])
	if err := fn(&cp); err != nil {
		return model.Customer{}, err
	}
	d.customers[idx] = cp

	return cloneCustomer(cp), nil
}

// UpdateCampaign применяет fn к копии кампании и сохраняет её, если fn завершилась без ошибки.
func (d *MemoryDirectory) UpdateCampaign(ctx context.Context, id string, fn func(c *model.Campaign) error) (model.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return model.Campaign{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := slices.IndexFunc(d.campaigns, func(c model.Campaign) bool { return c.ID == id })
	if idx < 0 {
		return model.Campaign{}, fmt.Errorf("%w: campaign %s", model.ErrNotFound, id)
	}

	cp := cloneCampaign(d.campaigns[idx])
	if err := fn(&cp); err != nil {
		return model.Campaign{}, err
	}
	d.campaigns[idx] = cp

	return cloneCampaign(cp), nil
}

func cloneCustomer(c model.Customer) model.Customer {
	c.FavoriteItems = slices.Clone(c.FavoriteItems)
	return c
}

func cloneCampaign(c model.Campaign) model.Campaign {
	c.TargetSegments = slices.Clone(c.TargetSegments)
	if c.ScheduledAt != nil {
		at := *c.ScheduledAt
		c.ScheduledAt = &at
	}
	return c
}
