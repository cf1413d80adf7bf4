package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

func sampleChef(t *testing.T) *model.Chef {
	t.Helper()

	chef := &model.Chef{
		StaffInfo: model.StaffInfo{ID: "CH-1", Name: "Marco Rossi", Status: model.StaffBusy, Shift: "evening"},
		Station:   model.StationGrill,
	}
	_, err := chef.AddTask(model.TaskInventoryChecks, "Check fish delivery", testNow)
	require.NoError(t, err)
	in := testNow.Add(-4 * time.Hour)
	_, err = chef.LogAttendance(model.AttendanceLog{Date: testNow, TimeIn: &in, Status: model.AttendancePresent})
	require.NoError(t, err)
	_, err = chef.RequestLeave(model.LeaveAnnual, testNow.AddDate(0, 0, 7), testNow.AddDate(0, 0, 14), "Family vacation")
	require.NoError(t, err)
	return chef
}

func TestStaffRoutes(t *testing.T) {
	chef := sampleChef(t)
	waiter := &model.Waiter{StaffInfo: model.StaffInfo{ID: "WT-1", Name: "Sarah Johnson", Status: model.StaffAvailable}, Rating: 4.8}
	h := newTestHandler(t, &stubService{staff: []model.Staff{chef, waiter}})

	res := do(t, h, http.MethodGet, "/api/staff", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "chef", list[0]["role"])
	assert.Equal(t, "grill", list[0]["station"])
	assert.NotContains(t, list[0], "tasks")
	assert.Equal(t, "waiter", list[1]["role"])
	assert.InDelta(t, 4.8, list[1]["rating"], 1e-9)

	res = do(t, h, http.MethodGet, "/api/staff/CH-1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var detail chefDetailResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&detail))
	assert.Equal(t, "Marco Rossi", detail.Name)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "pending", detail.Tasks[0].Status)
	require.Len(t, detail.Attendance, 1)
	assert.Equal(t, "2024-03-01", detail.Attendance[0].Date)
	require.Len(t, detail.LeaveRequests, 1)
	assert.Equal(t, "pending", detail.LeaveRequests[0].ApprovalStatus)

	res = do(t, h, http.MethodGet, "/api/staff/WT-1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var waiterDetail map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&waiterDetail))
	assert.NotContains(t, waiterDetail, "tasks")

	res = do(t, h, http.MethodGet, "/api/staff/CH-9", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = do(t, h, http.MethodGet, "/api/staff/summary", nil, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestChefTaskRoutes(t *testing.T) {
	chef := sampleChef(t)
	svc := &stubService{chef: chef}
	h := newTestHandler(t, svc)

	res := do(t, h, http.MethodPost, "/api/staff/CH-1/tasks", taskRequest{TaskType: "cleaning", Description: "Clean grill"}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var detail chefDetailResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&detail))
	assert.Len(t, detail.Tasks, 2)
	assert.Equal(t, "Clean grill", svc.name)

	taskID := chef.Tasks()[0].ID

	res = do(t, h, http.MethodPost, "/api/staff/CH-1/tasks/"+taskID+"/start", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "start", svc.status)
	assert.Equal(t, taskID, svc.taskID)
	assert.Equal(t, "Sarah Johnson", svc.actor)

	res = do(t, h, http.MethodPost, "/api/staff/CH-1/tasks/"+taskID+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "complete", svc.status)

	svc.err = model.ErrNotFound
	res = do(t, h, http.MethodPost, "/api/staff/WT-1/tasks/"+taskID+"/start", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDecideLeaveRoute(t *testing.T) {
	chef := sampleChef(t)
	requestID := chef.LeaveRequests()[0].ID

	tests := []struct {
		name        string
		body        any
		err         error
		wantStatus  int
		wantApprove *bool
	}{
		{"approve", map[string]any{"approved": true}, nil, http.StatusOK, ptr(true)},
		{"reject", map[string]any{"approved": false}, nil, http.StatusOK, ptr(false)},
		{"decision missing", map[string]any{}, nil, http.StatusBadRequest, nil},
		{"already decided", map[string]any{"approved": true}, model.ErrValidation, http.StatusUnprocessableEntity, ptr(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{chef: chef, err: tt.err}
			h := newTestHandler(t, svc)

			res := do(t, h, http.MethodPut, "/api/staff/CH-1/leave/"+requestID, tt.body, nil)
			require.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantApprove, svc.approve)
			if tt.wantApprove != nil {
				assert.Equal(t, requestID, svc.taskID)
			}
		})
	}
}

func TestCustomerRoutes(t *testing.T) {
	svc := &stubService{customers: []model.Customer{{ID: "CU-1", Name: "John Smith", VisitCount: 4, TotalSpent: 200, LoyaltyTier: model.TierGold, Segment: model.SegmentVIP}}}
	h := newTestHandler(t, svc)

	res := do(t, h, http.MethodGet, "/api/customers/CU-1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var c customerResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&c))
	assert.Equal(t, "CU-1", c.ID)
	assert.InDelta(t, 50, c.AvgSpending, 1e-9)

	res = do(t, h, http.MethodPost, "/api/customers/CU-1/visits", visitRequest{Amount: 42.5}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.InDelta(t, 42.5, svc.amount, 1e-9)

	res = do(t, h, http.MethodPut, "/api/customers/CU-1/tier", tierRequest{Tier: "platinum"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "platinum", svc.name)

	svc.err = model.ErrValidation
	res = do(t, h, http.MethodPut, "/api/customers/CU-1/tier", tierRequest{Tier: "bronze"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	h = newTestHandler(t, &stubService{})
	res = do(t, h, http.MethodGet, "/api/customers/CU-9", nil, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCampaignRoutes(t *testing.T) {
	scheduled := testNow.Add(24 * time.Hour)
	svc := &stubService{campaigns: []model.Campaign{
		{ID: "CP-1", Name: "Weekend Brunch", Type: model.CampaignEmail, Status: model.CampaignActive, SentCount: 1200, OpenRate: 42.5, TargetSegments: []model.Segment{model.SegmentRegular}},
		{ID: "CP-3", Name: "First Visit Dessert", Type: model.CampaignQR, Status: model.CampaignScheduled, ScheduledAt: &scheduled},
	}}
	h := newTestHandler(t, svc)

	res := do(t, h, http.MethodGet, "/api/campaigns", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []campaignResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.True(t, list[0].HasPerformance)
	assert.Equal(t, []string{"regular"}, list[0].TargetSegments)
	assert.False(t, list[1].HasPerformance)
	assert.Equal(t, "2024-03-02T19:56:00Z", list[1].ScheduledAt)

	res = do(t, h, http.MethodGet, "/api/campaigns/CP-1", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "CP-1", svc.id)

	res = do(t, h, http.MethodPatch, "/api/campaigns/CP-1/status", statusRequest{Status: "completed"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "completed", svc.status)

	svc.err = model.ErrInvalidTransition
	res = do(t, h, http.MethodPatch, "/api/campaigns/CP-1/status", statusRequest{Status: "draft"}, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	svc.err = errors.New("directory unavailable")
	res = do(t, h, http.MethodGet, "/api/campaigns", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func ptr[T any](v T) *T {
	return &v
}
