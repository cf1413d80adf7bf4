package query

import (
	"fmt"
	"strings"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// CampaignMetrics содержит сводку по маркетинговым кампаниям.
// Средние значения считаются только по кампаниям с отправками; HasData
// равен false, если таких кампаний нет, и тогда средние равны нулю.
type CampaignMetrics struct {
	Active            int     `json:"active"`
	TotalSent         int     `json:"total_sent"`
	AvgOpenRate       float64 `json:"avg_open_rate"`
	AvgClickRate      float64 `json:"avg_click_rate"`
	AvgRedemptionRate float64 `json:"avg_redemption_rate"`
	HasData           bool    `json:"has_data"`
}

// AggregateCampaigns рассчитывает сводку по кампаниям.
func AggregateCampaigns(campaigns []model.Campaign) CampaignMetrics {
	var (
		m                     CampaignMetrics
		open, click, redeemed float64
		qualifying            int
	)

	for i := range campaigns {
		c := &campaigns[i]
		if c.Status == model.CampaignActive {
			m.Active++
		}
		m.TotalSent += c.SentCount

		if c.SentCount <= 0 || !c.HasPerformance() {
			continue
		}
		qualifying++
		open += c.OpenRate
		click += c.ClickRate
		redeemed += c.RedemptionRate
	}

	m.HasData = qualifying > 0
	m.AvgOpenRate = average(open, qualifying)
	m.AvgClickRate = average(click, qualifying)
	m.AvgRedemptionRate = average(redeemed, qualifying)
	return m
}

// StaffMetrics содержит сводку по официантам и поварам.
type StaffMetrics struct {
	Waiters         int                   `json:"waiters"`
	ActiveWaiters   int                   `json:"active_waiters"`
	OrdersServed    int                   `json:"orders_served"`
	AvgWaiterRating float64               `json:"avg_waiter_rating"`
	TotalTips       float64               `json:"total_tips"`
	Chefs           int                   `json:"chefs"`
	ActiveChefs     int                   `json:"active_chefs"`
	OrdersCooked    int                   `json:"orders_cooked"`
	AvgCookingTime  float64               `json:"avg_cooking_time"`
	AvgAccuracyRate float64               `json:"avg_accuracy_rate"`
	BusyByStation   map[model.Station]int `json:"busy_by_station"`
	ChefsByStation  map[model.Station]int `json:"chefs_by_station"`
}

// SummarizeStaff рассчитывает сводку по персоналу.
func SummarizeStaff(staff []model.Staff) (StaffMetrics, error) {
	m := StaffMetrics{
		BusyByStation:  make(map[model.Station]int),
		ChefsByStation: make(map[model.Station]int),
	}
	for _, st := range model.Stations() {
		m.BusyByStation[st] = 0
		m.ChefsByStation[st] = 0
	}

	var rating, cooking, accuracy float64
	for _, s := range staff {
		switch v := s.(type) {
		case *model.Waiter:
			m.Waiters++
			if v.Status != model.StaffOffline {
				m.ActiveWaiters++
			}
			m.OrdersServed += v.OrdersServedToday
			m.TotalTips += v.TipsToday
			rating += v.Rating
		case *model.Chef:
			m.Chefs++
			if v.Status != model.StaffOffline {
				m.ActiveChefs++
			}
			m.OrdersCooked += v.OrdersCompletedToday
			cooking += v.AvgCookingTime
			accuracy += v.AccuracyRate
			m.ChefsByStation[v.Station]++
			if v.Status == model.StaffBusy {
				m.BusyByStation[v.Station]++
			}
		default:
			return StaffMetrics{}, fmt.Errorf("unsupported staff type %T", s)
		}
	}

	m.AvgWaiterRating = average(rating, m.Waiters)
	m.AvgCookingTime = average(cooking, m.Chefs)
	m.AvgAccuracyRate = average(accuracy, m.Chefs)
	return m, nil
}

// FilterCustomers выбирает гостей по подстроке в имени или email и по сегменту.
func FilterCustomers(customers []model.Customer, search, segment string) []model.Customer {
	search = strings.ToLower(strings.TrimSpace(search))

	res := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		if active(segment) && string(c.Segment) != segment {
			continue
		}
		res = append(res, c)
	}
	return res
}

// CustomerMetrics содержит сводку по базе гостей.
type CustomerMetrics struct {
	Total       int     `json:"total"`
	VIP         int     `json:"vip"`
	TotalVisits int     `json:"total_visits"`
	AvgSpending float64 `json:"avg_spending"`
}

// AggregateCustomers рассчитывает сводку по гостям. Средний чек считается
// по всем визитам, а не как среднее средних.
func AggregateCustomers(customers []model.Customer) CustomerMetrics {
	m := CustomerMetrics{Total: len(customers)}

	var spent float64
	for i := range customers {
		if customers[i].Segment == model.SegmentVIP {
			m.VIP++
		}
		m.TotalVisits += customers[i].VisitCount
		spent += customers[i].TotalSpent
	}

	m.AvgSpending = average(spent, m.TotalVisits)
	return m
}
