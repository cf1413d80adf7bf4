package handler

import (
	"time"

	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/query"
)

type itemRequest struct {
	Name                string   `json:"name"`
	Quantity            int      `json:"quantity"`
	Price               float64  `json:"price"`
	Modifications       []string `json:"modifications"`
	SpecialInstructions string   `json:"special_instructions"`
}

func (r itemRequest) item() model.OrderItem {
	return model.OrderItem{
		Name:                r.Name,
		Quantity:            r.Quantity,
		Price:               r.Price,
		Modifications:       r.Modifications,
		SpecialInstructions: r.SpecialInstructions,
	}
}

type createOrderRequest struct {
	TableNumber   int           `json:"table_number"`
	CustomerName  string        `json:"customer_name"`
	CustomerID    string        `json:"customer_id"`
	Source        string        `json:"source"`
	Items         []itemRequest `json:"items"`
	EstimatedTime int           `json:"estimated_time"`
}

func (r createOrderRequest) params() model.NewOrderParams {
	items := make([]model.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, it.item())
	}
	return model.NewOrderParams{
		TableNumber:   r.TableNumber,
		CustomerName:  r.CustomerName,
		CustomerID:    r.CustomerID,
		Source:        model.OrderSource(r.Source),
		Items:         items,
		EstimatedTime: r.EstimatedTime,
	}
}

type itemResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Quantity            int      `json:"quantity"`
	Price               float64  `json:"price"`
	Modifications       []string `json:"modifications"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

type timelineResponse struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Actor     string `json:"actor,omitempty"`
	Details   string `json:"details,omitempty"`
}

type orderResponse struct {
	ID             string             `json:"id"`
	TableNumber    int                `json:"table_number"`
	Table          string             `json:"table"`
	CustomerName   string             `json:"customer_name"`
	CustomerID     string             `json:"customer_id,omitempty"`
	Source         string             `json:"source"`
	Status         string             `json:"status"`
	Items          []itemResponse     `json:"items"`
	TotalAmount    float64            `json:"total_amount"`
	CreatedAt      string             `json:"created_at"`
	EstimatedTime  int                `json:"estimated_time,omitempty"`
	AssignedWaiter *string            `json:"assigned_waiter"`
	AssignedChef   *string            `json:"assigned_chef"`
	Timeline       []timelineResponse `json:"timeline"`
	Revision       int64              `json:"revision"`
}

func newOrderResponse(o *model.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		TableNumber:    o.TableNumber,
		Table:          o.TableLabel(),
		CustomerName:   o.CustomerName,
		CustomerID:     o.CustomerID,
		Source:         string(o.Source),
		Status:         string(o.Status),
		Items:          make([]itemResponse, 0, len(o.Items)),
		TotalAmount:    o.TotalAmount,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		EstimatedTime:  o.EstimatedTime,
		AssignedWaiter: optional(o.AssignedWaiter),
		AssignedChef:   optional(o.AssignedChef),
		Timeline:       make([]timelineResponse, 0, len(o.Timeline)),
		Revision:       o.Revision,
	}

	for _, it := range o.Items {
		mods := it.Modifications
		if mods == nil {
			mods = []string{}
		}
		resp.Items = append(resp.Items, itemResponse{
			ID:                  it.ID,
			Name:                it.Name,
			Quantity:            it.Quantity,
			Price:               it.Price,
			Modifications:       mods,
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	for _, e := range o.Timeline {
		resp.Timeline = append(resp.Timeline, timelineResponse{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Event:     e.Event,
			Actor:     e.Actor,
			Details:   e.Details,
		})
	}
	return resp
}

type customerResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone,omitempty"`
	VisitCount    int      `json:"visit_count"`
	TotalSpent    float64  `json:"total_spent"`
	AvgSpending   float64  `json:"avg_spending"`
	FavoriteItems []string `json:"favorite_items"`
	LastVisit     string   `json:"last_visit,omitempty"`
	LoyaltyTier   string   `json:"loyalty_tier"`
	Segment       string   `json:"segment"`
}

type customersResponse struct {
	Customers []customerResponse    `json:"customers"`
	Metrics   query.CustomerMetrics `json:"metrics"`
}

func newCustomerResponse(c *model.Customer) customerResponse {
	resp := customerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		VisitCount:    c.VisitCount,
		TotalSpent:    c.TotalSpent,
		AvgSpending:   c.AvgSpending(),
		FavoriteItems: c.FavoriteItems,
		LoyaltyTier:   string(c.LoyaltyTier),
		Segment:       string(c.Segment),
	}
	if resp.FavoriteItems == nil {
		resp.FavoriteItems = []string{}
	}
	if !c.LastVisit.IsZero() {
		resp.LastVisit = c.LastVisit.Format(time.RFC3339)
	}
	return resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type staffResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Status        string   `json:"status"`
	Shift         string   `json:"shift,omitempty"`
	CurrentOrders []string `json:"current_orders"`

	Phone             string  `json:"phone,omitempty"`
	AssignedTables    []int   `json:"assigned_tables,omitempty"`
	OrdersServedToday int     `json:"orders_served_today,omitempty"`
	AvgOrderValue     float64 `json:"avg_order_value,omitempty"`
	Rating            float64 `json:"rating,omitempty"`
	TipsToday         float64 `json:"tips_today,omitempty"`

	Station              string   `json:"station,omitempty"`
	Expertise            []string `json:"expertise,omitempty"`
	OrdersCompletedToday int      `json:"orders_completed_today,omitempty"`
	AvgCookingTime       float64  `json:"avg_cooking_time,omitempty"`
	AccuracyRate         float64  `json:"accuracy_rate,omitempty"`
}

func newStaffResponse(s model.Staff) staffResponse {
	info := s.Info()
	resp := staffResponse{
		ID:            info.ID,
		Name:          info.Name,
		Role:          string(s.Role()),
		Status:        string(info.Status),
		Shift:         info.Shift,
		CurrentOrders: info.CurrentOrders,
	}
	if resp.CurrentOrders == nil {
		resp.CurrentOrders = []string{}
	}

	switch v := s.(type) {
	case *model.Waiter:
		resp.Phone = v.Phone
		resp.AssignedTables = v.AssignedTables
		resp.OrdersServedToday = v.OrdersServedToday
		resp.AvgOrderValue = v.AvgOrderValue
		resp.Rating = v.Rating
		resp.TipsToday = v.TipsToday
	case *model.Chef:
		resp.Station = string(v.Station)
		resp.Expertise = v.Expertise
		resp.OrdersCompletedToday = v.OrdersCompletedToday
		resp.AvgCookingTime = v.AvgCookingTime
		resp.AccuracyRate = v.AccuracyRate
	}
	return resp
}

type taskResponse struct {
	ID            string `json:"id"`
	TaskType      string `json:"task_type"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	AssignedDate  string `json:"assigned_date"`
	CompletedDate string `json:"completed_date,omitempty"`
}

type attendanceResponse struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	TimeIn  string `json:"time_in,omitempty"`
	TimeOut string `json:"time_out,omitempty"`
	Status  string `json:"status"`
}

type leaveResponse struct {
	ID             string `json:"id"`
	LeaveType      string `json:"leave_type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Reason         string `json:"reason"`
	ApprovalStatus string `json:"approval_status"`
}

// chefDetailResponse дополняет карточку повара поручениями, посещаемостью и заявками на отпуск.
type chefDetailResponse struct {
	staffResponse
	Tasks         []taskResponse       `json:"tasks"`
	Attendance    []attendanceResponse `json:"attendance"`
	LeaveRequests []leaveResponse      `json:"leave_requests"`
}

func newChefDetailResponse(c *model.Chef) chefDetailResponse {
	tasks := c.Tasks()
	logs := c.AttendanceLogs()
	leaves := c.LeaveRequests()

	resp := chefDetailResponse{
		staffResponse: newStaffResponse(c),
		Tasks:         make([]taskResponse, 0, len(tasks)),
		Attendance:    make([]attendanceResponse, 0, len(logs)),
		LeaveRequests: make([]leaveResponse, 0, len(leaves)),
	}

	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskResponse{
			ID:            t.ID,
			TaskType:      string(t.TaskType),
			Description:   t.Description,
			Status:        string(t.Status),
			AssignedDate:  t.AssignedDate.Format(time.RFC3339),
			CompletedDate: formatOptional(t.CompletedDate, time.RFC3339),
		})
	}
	for _, l := range logs {
		resp.Attendance = append(resp.Attendance, attendanceResponse{
			ID:      l.ID,
			Date:    l.Date.Format(time.DateOnly),
			TimeIn:  formatOptional(l.TimeIn, time.RFC3339),
			TimeOut: formatOptional(l.TimeOut, time.RFC3339),
			Status:  string(l.Status),
		})
	}
	for _, l := range leaves {
		resp.LeaveRequests = append(resp.LeaveRequests, leaveResponse{
			ID:             l.ID,
			LeaveType:      string(l.LeaveType),
			StartDate:      l.StartDate.Format(time.DateOnly),
			EndDate:        l.EndDate.Format(time.DateOnly),
			Reason:         l.Reason,
			ApprovalStatus: string(l.ApprovalStatus),
		})
	}
	return resp
}

// staffDetail возвращает карточку сотрудника; для повара с поручениями, посещаемостью и отпусками.
func staffDetail(s model.Staff) any {
	if c, ok := s.(*model.Chef); ok {
		return newChefDetailResponse(c)
	}
	return newStaffResponse(s)
}

type campaignResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	TargetSegments []string `json:"target_segments"`
	Status         string   `json:"status"`
	ScheduledAt    string   `json:"scheduled_at,omitempty"`
	SentCount      int      `json:"sent_count"`
	OpenRate       float64  `json:"open_rate"`
	ClickRate      float64  `json:"click_rate"`
	RedemptionRate float64  `json:"redemption_rate"`
	HasPerformance bool     `json:"has_performance"`
	Content        string   `json:"content"`
}

func newCampaignResponse(c *model.Campaign) campaignResponse {
	resp := campaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Type:           string(c.Type),
		TargetSegments: make([]string, 0, len(c.TargetSegments)),
		Status:         string(c.Status),
		ScheduledAt:    formatOptional(c.ScheduledAt, time.RFC3339),
		SentCount:      c.SentCount,
		OpenRate:       c.OpenRate,
		ClickRate:      c.ClickRate,
		RedemptionRate: c.RedemptionRate,
		HasPerformance: c.HasPerformance(),
		Content:        c.Content,
	}
	for _, s := range c.TargetSegments {
		resp.TargetSegments = append(resp.TargetSegments, string(s))
	}
	return resp
}

func formatOptional(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
