package model

import (
	"fmt"
	"strings"
	"time"
)

// TransitionPolicy определяет, какие смены статуса заказа допустимы.
type TransitionPolicy int

const (
	// TransitionAny разрешает переход в любой статус, в том числе назад.
	TransitionAny TransitionPolicy = iota
	// TransitionSequential разрешает только переход в следующий статус цикла.
	TransitionSequential
)

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusNew:       OrderStatusKitchen,
	OrderStatusKitchen:   OrderStatusReady,
	OrderStatusReady:     OrderStatusDelivered,
	OrderStatusDelivered: OrderStatusCompleted,
}

// Allows сообщает, допускает ли политика переход from -> to.
func (p TransitionPolicy) Allows(from, to OrderStatus) bool {
	if to.rank() < 0 {
		return false
	}
	switch p {
	case TransitionSequential:
		next, ok := nextStatus[from]
		return ok && next == to
	default:
		return true
	}
}

// ChangeStatus переводит заказ в новый статус и записывает событие в историю.
// Повторная установка текущего статуса ничего не меняет и возвращает false.
func (o *Order) ChangeStatus(to OrderStatus, policy TransitionPolicy, at time.Time, actor string) (bool, error) {
	if to.rank() < 0 {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if o.Status == to {
		return false, nil
	}
	if !policy.Allows(o.Status, to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	o.Status = to
	o.Record(at, StatusChangedEvent(to), actor, "")
	return true, nil
}

// AssignWaiter назначает официанта. Пустое имя снимает назначение.
// Назначения не попадают в историю: она хранит только смены статуса.
func (o *Order) AssignWaiter(name string) bool {
	return assign(&o.AssignedWaiter, name)
}

// AssignChef назначает повара. Пустое имя снимает назначение.
func (o *Order) AssignChef(name string) bool {
	return assign(&o.AssignedChef, name)
}

func assign(field *string, name string) bool {
	name = strings.TrimSpace(name)
	if *field == name {
		return false
	}
	*field = name
	return true
}

// StatusChange описывает применённую смену статуса заказа.
type StatusChange struct {
	OrderID    string      `json:"order_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	Actor      string      `json:"actor"`
	OccurredAt time.Time   `json:"occurred_at"`
	Revision   int64       `json:"revision"`
}
