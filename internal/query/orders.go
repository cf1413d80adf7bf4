// Package query содержит чистые функции выборки и агрегации данных панели управления.
// Функции не изменяют входные срезы.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

const (
	// All означает отсутствие фильтра по измерению.
	All = "all"
	// Unassigned в фильтре по официанту выбирает заказы без официанта.
	Unassigned = "unassigned"
)

// Criteria описывает фильтр списка заказов. Пустое значение или All отключают измерение.
type Criteria struct {
	Search string
	Status string
	Source string
	Waiter string
	Date   *time.Time
}

// FilterOrders возвращает заказы, удовлетворяющие всем критериям, в исходном порядке.
// Строка поиска сравнивается как есть, без обрезки пробелов.
func FilterOrders(orders []model.Order, c Criteria) []model.Order {
	search := strings.ToLower(c.Search)

	res := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if search != "" && !matchesSearch(&o, search) {
			continue
		}
		if active(c.Status) && string(o.Status) != c.Status {
			continue
		}
		if active(c.Source) && string(o.Source) != c.Source {
			continue
		}
		if active(c.Waiter) && !matchesWaiter(&o, c.Waiter) {
			continue
		}
		if c.Date != nil && !model.SameDay(o.CreatedAt, *c.Date) {
			continue
		}
		res = append(res, o)
	}

	return res
}

func active(v string) bool {
	return v != "" && v != All
}

func matchesSearch(o *model.Order, search string) bool {
	return strings.Contains(strings.ToLower(o.ID), search) ||
		strings.Contains(strings.ToLower(o.CustomerName), search) ||
		strings.Contains(strings.ToLower(o.TableLabel()), search)
}

func matchesWaiter(o *model.Order, waiter string) bool {
	if waiter == Unassigned {
		return o.AssignedWaiter == ""
	}
	return o.AssignedWaiter == waiter
}

// OrderMetrics содержит сводные показатели по набору заказов.
type OrderMetrics struct {
	Total         int                       `json:"total"`
	ByStatus      map[model.OrderStatus]int `json:"by_status"`
	Revenue       float64                   `json:"revenue"`
	AvgOrderValue float64                   `json:"avg_order_value"`
}

// AggregateOrders считает заказы по статусам, выручку и средний чек.
// Для пустого набора все показатели равны нулю.
func AggregateOrders(orders []model.Order) OrderMetrics {
	m := OrderMetrics{
		Total:    len(orders),
		ByStatus: make(map[model.OrderStatus]int, 5),
	}
	for _, s := range model.OrderStatuses() {
		m.ByStatus[s] = 0
	}

	for i := range orders {
		m.ByStatus[orders[i].Status]++
	}

	m.Revenue = TotalRevenue(orders)
	m.AvgOrderValue = average(m.Revenue, len(orders))
	return m
}

// TotalRevenue возвращает сумму заказов, посчитанную в центах.
func TotalRevenue(orders []model.Order) float64 {
	var cents int64
	for i := range orders {
		cents += orders[i].TotalCents()
	}
	return float64(cents) / 100
}

// DashboardMetrics содержит показатели главной страницы за текущий день.
type DashboardMetrics struct {
	OrdersInKitchen      int     `json:"orders_in_kitchen"`
	OrdersDeliveredToday int     `json:"orders_delivered_today"`
	NewOrdersLastHour    int     `json:"new_orders_last_hour"`
	TotalRevenueToday    float64 `json:"total_revenue_today"`
	AvgOrderValue        float64 `json:"avg_order_value"`
	PeakHour             string  `json:"peak_hour"`
}

// Dashboard рассчитывает показатели главной страницы относительно момента now.
// Выручка учитывает заказы, созданные в тот же календарный день.
func Dashboard(orders []model.Order, now time.Time) DashboardMetrics {
	var (
		m          DashboardMetrics
		todayCents int64
		todayCount int
		perHour    [24]int
	)

	hourAgo := now.Add(-time.Hour)
	for i := range orders {
		o := &orders[i]

		if o.Status == model.OrderStatusKitchen {
			m.OrdersInKitchen++
		}
		if !o.CreatedAt.Before(hourAgo) && !o.CreatedAt.After(now) {
			m.NewOrdersLastHour++
		}
		if !model.SameDay(o.CreatedAt, now) {
			continue
		}

		todayCount++
		todayCents += o.TotalCents()
		perHour[o.CreatedAt.In(now.Location()).Hour()]++
		if o.Status == model.OrderStatusDelivered || o.Status == model.OrderStatusCompleted {
			m.OrdersDeliveredToday++
		}
	}

	m.TotalRevenueToday = float64(todayCents) / 100
	m.AvgOrderValue = average(m.TotalRevenueToday, todayCount)
	m.PeakHour = peakHour(perHour)
	return m
}

func peakHour(perHour [24]int) string {
	best := -1
	for h, n := range perHour {
		if n > 0 && (best < 0 || n > perHour[best]) {
			best = h
		}
	}
	if best < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:00-%02d:00", best, (best+1)%24)
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
