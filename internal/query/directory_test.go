package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

func TestAggregateCampaigns(t *testing.T) {
	campaigns := []model.Campaign{
		{ID: "C1", Status: model.CampaignActive, SentCount: 1000, OpenRate: 40, ClickRate: 10, RedemptionRate: 5},
		{ID: "C2", Status: model.CampaignCompleted, SentCount: 500, OpenRate: 20, ClickRate: 6, RedemptionRate: 3},
		{ID: "C3", Status: model.CampaignScheduled, SentCount: 0},
		{ID: "C4", Status: model.CampaignDraft},
	}

	m := AggregateCampaigns(campaigns)

	assert.Equal(t, 1, m.Active)
	assert.Equal(t, 1500, m.TotalSent)
	assert.True(t, m.HasData)
	assert.InDelta(t, 30, m.AvgOpenRate, 1e-9)
	assert.InDelta(t, 8, m.AvgClickRate, 1e-9)
	assert.InDelta(t, 4, m.AvgRedemptionRate, 1e-9)
}

func TestAggregateCampaigns_NoData(t *testing.T) {
	m := AggregateCampaigns([]model.Campaign{{Status: model.CampaignDraft}})

	assert.False(t, m.HasData)
	assert.Zero(t, m.AvgOpenRate)
	assert.Zero(t, m.AvgRedemptionRate)
}

func TestSummarizeStaff(t *testing.T) {
	staff := []model.Staff{
		&model.Waiter{StaffInfo: model.StaffInfo{Name: "Sarah Johnson", Status: model.StaffBusy}, OrdersServedToday: 12, Rating: 4.8, TipsToday: 85.5},
		&model.Waiter{StaffInfo: model.StaffInfo{Name: "Mike Wilson", Status: model.StaffOffline}, OrdersServedToday: 8, Rating: 4.4, TipsToday: 40},
		&model.Chef{StaffInfo: model.StaffInfo{Name: "Marco", Status: model.StaffBusy}, Station: model.StationGrill, OrdersCompletedToday: 20, AvgCookingTime: 12, AccuracyRate: 98},
		&model.Chef{StaffInfo: model.StaffInfo{Name: "Aiko", Status: model.StaffAvailable}, Station: model.StationGrill, OrdersCompletedToday: 10, AvgCookingTime: 8, AccuracyRate: 96},
	}

	m, err := SummarizeStaff(staff)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Waiters)
	assert.Equal(t, 1, m.ActiveWaiters)
	assert.Equal(t, 20, m.OrdersServed)
	assert.InDelta(t, 4.6, m.AvgWaiterRating, 1e-9)
	assert.InDelta(t, 125.5, m.TotalTips, 1e-9)
	assert.Equal(t, 2, m.Chefs)
	assert.Equal(t, 2, m.ActiveChefs)
	assert.Equal(t, 30, m.OrdersCooked)
	assert.InDelta(t, 10, m.AvgCookingTime, 1e-9)
	assert.InDelta(t, 97, m.AvgAccuracyRate, 1e-9)
	assert.Equal(t, 1, m.BusyByStation[model.StationGrill])
	assert.Equal(t, 2, m.ChefsByStation[model.StationGrill])
	assert.Equal(t, 0, m.ChefsByStation[model.StationSalad])
}

func TestSummarizeStaff_Empty(t *testing.T) {
	m, err := SummarizeStaff(nil)
	require.NoError(t, err)

	assert.Zero(t, m.AvgWaiterRating)
	assert.Zero(t, m.AvgCookingTime)
}

func TestFilterCustomers(t *testing.T) {
	customers := []model.Customer{
		{ID: "1", Name: "John Smith", Email: "john@example.com", Segment: model.SegmentVIP},
		{ID: "2", Name: "Emily Davis", Email: "emily@example.com", Segment: model.SegmentRegular},
		{ID: "3", Name: "Lisa Anderson", Email: "lisa@smith.dev", Segment: model.SegmentFirstTime},
	}

	got := FilterCustomers(customers, "smith", All)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	got = FilterCustomers(customers, "", "regular")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	assert.Len(t, FilterCustomers(customers, "", ""), 3)
}

func TestAggregateCustomers(t *testing.T) {
	m := AggregateCustomers([]model.Customer{
		{Segment: model.SegmentVIP, VisitCount: 3, TotalSpent: 300},
		{Segment: model.SegmentRegular, VisitCount: 1, TotalSpent: 20},
	})

	assert.Equal(t, 2, m.Total)
	assert.Equal(t, 1, m.VIP)
	assert.Equal(t, 4, m.TotalVisits)
	assert.InDelta(t, 80, m.AvgSpending, 1e-9)

	assert.Zero(t, AggregateCustomers(nil).AvgSpending)
}
