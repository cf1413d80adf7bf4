// Package demo наполняет хранилища демонстрационными данными дашборда.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// OrderCreator сохраняет новые заказы и их изменения.
type OrderCreator interface {
	CreateOrder(ctx context.Context, o *model.Order) error
	SaveOrder(ctx context.Context, o *model.Order) error
}

// DirectoryWriter наполняет справочники.
type DirectoryWriter interface {
	AddStaff(staff ...model.Staff)
	AddCustomers(customers ...model.Customer)
	AddCampaigns(campaigns ...model.Campaign)
}

const seedActor = "system"

type seedOrder struct {
	table    int
	customer string
	source   model.OrderSource
	ago      time.Duration
	items    []model.OrderItem
	status   model.OrderStatus
	waiter   string
	chef     string
}

func seedOrders() []seedOrder {
	return []seedOrder{
		{
			table: 5, customer: "John Smith", source: model.OrderSourceWaiter, ago: 24 * time.Minute,
			items: []model.OrderItem{
				{Name: "Grilled Salmon", Quantity: 1, Price: 24.99},
				{Name: "Caesar Salad", Quantity: 1, Price: 12.99, Modifications: []string{"No croutons"}},
				{Name: "Sparkling Water", Quantity: 2, Price: 6.99},
			},
			status: model.OrderStatusKitchen, waiter: "Sarah Johnson", chef: "Marco Rossi",
		},
		{
			table: 12, customer: "Emily Davis", source: model.OrderSourceMobile, ago: 44 * time.Minute,
			items: []model.OrderItem{
				{Name: "Ribeye Steak", Quantity: 1, Price: 42.99, SpecialInstructions: "Medium rare"},
				{Name: "Red Wine", Quantity: 1, Price: 15.00},
				{Name: "French Onion Soup", Quantity: 1, Price: 14.99},
			},
			status: model.OrderStatusReady, waiter: "Mike Wilson", chef: "Aiko Tanaka",
		},
		{
			table: 8, customer: "Michael Brown", source: model.OrderSourceQR, ago: 2 * time.Minute,
			items: []model.OrderItem{
				{Name: "Ribeye Steak", Quantity: 1, Price: 42.99},
				{Name: "Tiramisu", Quantity: 1, Price: 9.99},
				{Name: "Espresso", Quantity: 3, Price: 3.99},
			},
			status: model.OrderStatusNew,
		},
		{
			table: 3, customer: "Lisa Anderson", source: model.OrderSourceWeb, ago: 89 * time.Minute,
			items: []model.OrderItem{
				{Name: "Grilled Salmon", Quantity: 1, Price: 28.99},
				{Name: "Caesar Salad", Quantity: 1, Price: 12.99},
			},
			status: model.OrderStatusDelivered, waiter: "Sarah Johnson", chef: "Marco Rossi",
		},
		{
			table: 15, customer: "David Kim", source: model.OrderSourceWaiter, ago: 17 * time.Minute,
			items: []model.OrderItem{
				{Name: "Grilled Salmon", Quantity: 2, Price: 28.99},
				{Name: "Tiramisu", Quantity: 1, Price: 9.99},
				{Name: "Iced Tea", Quantity: 2, Price: 3.99},
			},
			status: model.OrderStatusKitchen, chef: "Aiko Tanaka",
		},
	}
}

// SeedOrders создаёт демонстрационные заказы ORD-001..ORD-005 и проводит их по статусам.
func SeedOrders(ctx context.Context, repo OrderCreator, now time.Time) ([]*model.Order, error) {
	specs := seedOrders()
	res := make([]*model.Order, 0, len(specs))

	for _, s := range specs {
		createdAt := now.Add(-s.ago)

		o, err := model.NewOrder(model.NewOrderParams{
			TableNumber:   s.table,
			CustomerName:  s.customer,
			Source:        s.source,
			Items:         s.items,
			EstimatedTime: 20,
		}, createdAt, seedActor)
		if err != nil {
			return nil, fmt.Errorf("build demo order for %s: %w", s.customer, err)
		}
		if err := repo.CreateOrder(ctx, o); err != nil {
			return nil, fmt.Errorf("create demo order for %s: %w", s.customer, err)
		}

		o.AssignWaiter(s.waiter)
		o.AssignChef(s.chef)

		at := createdAt
		for _, status := range model.OrderStatuses()[1:] {
			if o.Status == s.status {
				break
			}
			at = at.Add(4 * time.Minute)
			if _, err := o.ChangeStatus(status, model.TransitionSequential, at, seedActor); err != nil {
				return nil, fmt.Errorf("advance demo order %s: %w", o.ID, err)
			}
		}

		if err := repo.SaveOrder(ctx, o); err != nil {
			return nil, fmt.Errorf("save demo order %s: %w", o.ID, err)
		}
		res = append(res, o)
	}

	return res, nil
}

// SeedDirectory наполняет справочник сотрудниками, гостями и кампаниями.
func SeedDirectory(dir DirectoryWriter, now time.Time) error {
	marco := &model.Chef{
		StaffInfo:            model.StaffInfo{ID: "CH-1", Name: "Marco Rossi", Status: model.StaffBusy, Shift: "evening", CurrentOrders: []string{"ORD-001"}},
		Station:              model.StationGrill,
		Expertise:            []string{"steaks", "seafood"},
		OrdersCompletedToday: 18,
		AvgCookingTime:       14,
		AccuracyRate:         97.5,
	}
	aiko := &model.Chef{
		StaffInfo:            model.StaffInfo{ID: "CH-2", Name: "Aiko Tanaka", Status: model.StaffBusy, Shift: "evening", CurrentOrders: []string{"ORD-005"}},
		Station:              model.StationMain,
		Expertise:            []string{"pasta", "soups"},
		OrdersCompletedToday: 15,
		AvgCookingTime:       11,
		AccuracyRate:         98.2,
	}
	lena := &model.Chef{
		StaffInfo:            model.StaffInfo{ID: "CH-3", Name: "Lena Petrova", Status: model.StaffAvailable, Shift: "evening"},
		Station:              model.StationDesserts,
		Expertise:            []string{"pastry"},
		OrdersCompletedToday: 9,
		AvgCookingTime:       7,
		AccuracyRate:         99.1,
	}

	if _, err := marco.AddTask(model.TaskInventoryChecks, "Check fish delivery", now.Add(-3*time.Hour)); err != nil {
		return err
	}
	if _, err := aiko.AddTask(model.TaskIngredientPreprocess, "Prepare soup base", now.Add(-2*time.Hour)); err != nil {
		return err
	}
	in := now.Add(-5 * time.Hour)
	if _, err := marco.LogAttendance(model.AttendanceLog{Date: now, TimeIn: &in, Status: model.AttendancePresent}); err != nil {
		return err
	}
	if _, err := lena.RequestLeave(model.LeaveAnnual, now.AddDate(0, 0, 14), now.AddDate(0, 0, 21), "Family vacation"); err != nil {
		return err
	}

	dir.AddStaff(
		&model.Waiter{
			StaffInfo:         model.StaffInfo{ID: "WT-1", Name: "Sarah Johnson", Status: model.StaffBusy, Shift: "evening", CurrentOrders: []string{"ORD-001"}},
			Phone:             "+1 555 0101",
			AssignedTables:    []int{3, 5, 7},
			OrdersServedToday: 14,
			AvgOrderValue:     58.4,
			Rating:            4.8,
			TipsToday:         86.5,
		},
		&model.Waiter{
			StaffInfo:         model.StaffInfo{ID: "WT-2", Name: "Mike Wilson", Status: model.StaffAvailable, Shift: "evening", CurrentOrders: []string{"ORD-002"}},
			Phone:             "+1 555 0102",
			AssignedTables:    []int{10, 12},
			OrdersServedToday: 11,
			AvgOrderValue:     62.1,
			Rating:            4.6,
			TipsToday:         64,
		},
		&model.Waiter{
			StaffInfo:         model.StaffInfo{ID: "WT-3", Name: "Anna Lee", Status: model.StaffBreak, Shift: "day"},
			Phone:             "+1 555 0103",
			AssignedTables:    []int{1, 2},
			OrdersServedToday: 6,
			AvgOrderValue:     44.9,
			Rating:            4.5,
			TipsToday:         21.25,
		},
		marco, aiko, lena,
	)

	dir.AddCustomers(
		model.Customer{ID: "CU-1", Name: "John Smith", Email: "john.smith@example.com", Phone: "+1 555 0201", VisitCount: 24, TotalSpent: 1248.5, FavoriteItems: []string{"Grilled Salmon"}, LastVisit: now, LoyaltyTier: model.TierGold, Segment: model.SegmentVIP},
		model.Customer{ID: "CU-2", Name: "Emily Davis", Email: "emily.davis@example.com", Phone: "+1 555 0202", VisitCount: 9, TotalSpent: 512.3, FavoriteItems: []string{"Ribeye Steak"}, LastVisit: now, LoyaltyTier: model.TierSilver, Segment: model.SegmentRegular},
		model.Customer{ID: "CU-3", Name: "Michael Brown", Email: "m.brown@example.com", VisitCount: 1, TotalSpent: 64.95, LastVisit: now, LoyaltyTier: model.TierBronze, Segment: model.SegmentFirstTime},
		model.Customer{ID: "CU-4", Name: "Lisa Anderson", Email: "lisa.anderson@example.com", VisitCount: 4, TotalSpent: 188, FavoriteItems: []string{"Caesar Salad"}, LastVisit: now.AddDate(0, 0, -12), LoyaltyTier: model.TierBronze, Segment: model.SegmentOccasional},
		model.Customer{ID: "CU-5", Name: "David Kim", Email: "david.kim@example.com", VisitCount: 31, TotalSpent: 2310.75, FavoriteItems: []string{"Grilled Salmon", "Tiramisu"}, LastVisit: now, LoyaltyTier: model.TierPlatinum, Segment: model.SegmentVIP},
	)

	scheduled := now.AddDate(0, 0, 3)
	dir.AddCampaigns(
		model.Campaign{ID: "CP-1", Name: "Weekend Brunch", Type: model.CampaignEmail, TargetSegments: []model.Segment{model.SegmentRegular, model.SegmentOccasional}, Status: model.CampaignActive, SentCount: 1200, OpenRate: 42.5, ClickRate: 12.3, RedemptionRate: 6.8, Content: "Two-for-one mimosas every Sunday"},
		model.Campaign{ID: "CP-2", Name: "VIP Tasting Night", Type: model.CampaignSMS, TargetSegments: []model.Segment{model.SegmentVIP}, Status: model.CampaignCompleted, SentCount: 150, OpenRate: 88, ClickRate: 35.5, RedemptionRate: 21.4, Content: "Chef's tasting menu, invitation only"},
		model.Campaign{ID: "CP-3", Name: "First Visit Dessert", Type: model.CampaignQR, TargetSegments: []model.Segment{model.SegmentFirstTime}, Status: model.CampaignScheduled, ScheduledAt: &scheduled, Content: "Free tiramisu on your next visit"},
		model.Campaign{ID: "CP-4", Name: "Happy Hour Push", Type: model.CampaignPush, Status: model.CampaignDraft, Content: "Half-price drinks 5-7 PM"},
	)

	return nil
}
