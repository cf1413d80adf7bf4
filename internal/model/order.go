// Package model содержит доменные сущности панели управления рестораном.
package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus описывает этап жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusKitchen   OrderStatus = "kitchen"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
)

var orderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusKitchen,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCompleted,
}

// OrderStatuses возвращает все статусы заказа в порядке жизненного цикла.
func OrderStatuses() []OrderStatus {
	return slices.Clone(orderStatuses)
}

// ParseOrderStatus проверяет, что строка является одним из статусов заказа.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if status.rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s OrderStatus) rank() int {
	return slices.Index(orderStatuses, s)
}

// OrderSource описывает канал, через который поступил заказ.
type OrderSource string

const (
	OrderSourceMobile OrderSource = "mobile"
	OrderSourceWaiter OrderSource = "waiter"
	OrderSourceQR     OrderSource = "qr"
	OrderSourceWeb    OrderSource = "web"
)

// ParseOrderSource проверяет, что строка является одним из каналов заказа.
func ParseOrderSource(s string) (OrderSource, error) {
	switch src := OrderSource(s); src {
	case OrderSourceMobile, OrderSourceWaiter, OrderSourceQR, OrderSourceWeb:
		return src, nil
	default:
		return "", fmt.Errorf("%w: unknown order source %q", ErrValidation, s)
	}
}

// OrderItem описывает позицию заказа.
type OrderItem struct {
	ID                  string
	Name                string
	Quantity            int
	Price               float64
	Modifications       []string
	SpecialInstructions string
}

// PriceCents возвращает цену за единицу в центах.
func (i OrderItem) PriceCents() int64 {
	return int64(math.Round(i.Price * 100))
}

func (i OrderItem) validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: quantity of %q must be at least 1", ErrValidation, i.Name)
	}
	if i.Price < 0 || math.IsNaN(i.Price) || math.IsInf(i.Price, 0) {
		return fmt.Errorf("%w: price of %q must be non-negative", ErrValidation, i.Name)
	}
	return nil
}

// TimelineEntry описывает событие в истории заказа.
type TimelineEntry struct {
	Timestamp time.Time
	Event     string
	Actor     string
	Details   string
}

// Order описывает заказ ресторана вместе с историей изменений.
type Order struct {
	ID             string
	TableNumber    int
	CustomerName   string
	CustomerID     string
	Source         OrderSource
	Status         OrderStatus
	Items          []OrderItem
	TotalAmount    float64
	CreatedAt      time.Time
	EstimatedTime  int
	AssignedWaiter string
	AssignedChef   string
	Timeline       []TimelineEntry
	Revision       int64
}

// NewOrderParams содержит данные для создания заказа.
type NewOrderParams struct {
	TableNumber   int
	CustomerName  string
	CustomerID    string
	Source        OrderSource
	Items         []OrderItem
	EstimatedTime int
}

// EventOrderCreated содержит текст первой записи истории любого заказа.
const EventOrderCreated = "Order created"

// NewOrder создаёт заказ в статусе new. Идентификатор назначает хранилище.
func NewOrder(p NewOrderParams, at time.Time, actor string) (*Order, error) {
	if p.TableNumber <= 0 {
		return nil, fmt.Errorf("%w: table number must be positive", ErrValidation)
	}
	if strings.TrimSpace(p.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if _, err := ParseOrderSource(string(p.Source)); err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrValidation)
	}

	items := make([]OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		if err := it.validate(); err != nil {
			return nil, err
		}
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Modifications = slices.Clone(it.Modifications)
		items = append(items, it)
	}

	o := &Order{
		TableNumber:   p.TableNumber,
		CustomerName:  strings.TrimSpace(p.CustomerName),
		CustomerID:    p.CustomerID,
		Source:        p.Source,
		Status:        OrderStatusNew,
		Items:         items,
		CreatedAt:     at,
		EstimatedTime: p.EstimatedTime,
	}
	o.recalculateTotal()
	o.Record(at, EventOrderCreated, actor, fmt.Sprintf("%s via %s", o.TableLabel(), o.Source))

	return o, nil
}

// TableLabel возвращает отображаемое название стола, например "Table 5".
func (o *Order) TableLabel() string {
	return fmt.Sprintf("Table %d", o.TableNumber)
}

// TotalCents возвращает сумму заказа в центах.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.PriceCents() * int64(it.Quantity)
	}
	return total
}

func (o *Order) recalculateTotal() {
	o.TotalAmount = float64(o.TotalCents()) / 100
}

// AddItem добавляет позицию и пересчитывает сумму заказа.
func (o *Order) AddItem(item OrderItem) (OrderItem, error) {
	if err := item.validate(); err != nil {
		return OrderItem{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Modifications = slices.Clone(item.Modifications)

	o.Items = append(o.Items, item)
	o.recalculateTotal()
	return item, nil
}

// RemoveItem удаляет позицию. Последнюю позицию удалить нельзя.
func (o *Order) RemoveItem(itemID string) (OrderItem, error) {
	idx := o.itemIndex(itemID)
	if idx < 0 {
		return OrderItem{}, fmt.Errorf("%w: item %s in order %s", ErrNotFound, itemID, o.ID)
	}
	if len(o.Items) == 1 {
		return OrderItem{}, fmt.Errorf("%w: order must keep at least one item", ErrValidation)
	}

	removed := o.Items[idx]
	o.Items = slices.Delete(o.Items, idx, idx+1)
	o.recalculateTotal()
	return removed, nil
}

// SetItemQuantity меняет количество позиции и пересчитывает сумму заказа.
func (o *Order) SetItemQuantity(itemID string, quantity int) (OrderItem, error) {
	idx := o.itemIndex(itemID)
	if idx < 0 {
		return OrderItem{}, fmt.Errorf("%w: item %s in order %s", ErrNotFound, itemID, o.ID)
	}
	if quantity < 1 {
		return OrderItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	o.Items[idx].Quantity = quantity
	o.recalculateTotal()
	return o.Items[idx], nil
}

func (o *Order) itemIndex(itemID string) int {
	return slices.IndexFunc(o.Items, func(it OrderItem) bool { return it.ID == itemID })
}

// Clone возвращает глубокую копию заказа.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.Modifications = slices.Clone(it.Modifications)
		c.Items[i] = it
	}
	c.Timeline = slices.Clone(o.Timeline)
	return &c
}
