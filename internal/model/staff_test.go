package model

import (
	"errors"
	"testing"
	"time"
)

func TestChef_Tasks(t *testing.T) {
	c := &Chef{StaffInfo: StaffInfo{ID: "C1", Name: "Marco"}}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	task, err := c.AddTask(TaskCleaning, " deep clean fryer ", now)
	if err != nil {
		t.Fatalf("AddTask error: %v", err)
	}
	if task.Status != TaskPending || task.Description != "deep clean fryer" {
		t.Fatalf("unexpected task: %+v", task)
	}

	if _, err := c.AddTask("juggling", "", now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown task type, got %v", err)
	}

	if err := c.StartTask(task.ID); err != nil {
		t.Fatalf("StartTask error: %v", err)
	}
	if err := c.CompleteTask(task.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("CompleteTask error: %v", err)
	}
	if err := c.StartTask(task.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation when restarting completed task, got %v", err)
	}
	if err := c.CompleteTask("missing", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tasks := c.Tasks()
	if len(tasks) != 1 || tasks[0].Status != TaskCompleted || tasks[0].CompletedDate == nil {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	tasks[0].Status = TaskPending
	if c.Tasks()[0].Status != TaskCompleted {
		t.Fatalf("Tasks must return a copy")
	}
}

func TestChef_Attendance(t *testing.T) {
	c := &Chef{}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := day.Add(8 * time.Hour)
	out := day.Add(17 * time.Hour)

	if _, err := c.LogAttendance(AttendanceLog{Date: day, TimeIn: &in, TimeOut: &out, Status: AttendancePresent}); err != nil {
		t.Fatalf("LogAttendance error: %v", err)
	}
	if _, err := c.LogAttendance(AttendanceLog{Date: day.Add(3 * time.Hour), Status: AttendanceLate}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate day, got %v", err)
	}
	if _, err := c.LogAttendance(AttendanceLog{Date: day.AddDate(0, 0, 1), TimeIn: &out, TimeOut: &in, Status: AttendancePresent}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for time out before time in, got %v", err)
	}
	if n := len(c.AttendanceLogs()); n != 1 {
		t.Fatalf("attendance logs = %d, want 1", n)
	}
}

func TestChef_Leave(t *testing.T) {
	c := &Chef{}
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	req, err := c.RequestLeave(LeaveAnnual, start, start.AddDate(0, 0, 5), "family trip")
	if err != nil {
		t.Fatalf("RequestLeave error: %v", err)
	}
	if _, err := c.RequestLeave(LeaveSick, start, start.AddDate(0, 0, -1), "flu"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted dates, got %v", err)
	}

	if err := c.DecideLeave(req.ID, true); err != nil {
		t.Fatalf("DecideLeave error: %v", err)
	}
	if err := c.DecideLeave(req.ID, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for second decision, got %v", err)
	}
	if got := c.LeaveRequests()[0].ApprovalStatus; got != LeaveApproved {
		t.Fatalf("approval = %s, want %s", got, LeaveApproved)
	}
}

func TestStaffVariants(t *testing.T) {
	staff := []Staff{
		&Waiter{StaffInfo: StaffInfo{Name: "Sarah Johnson"}},
		&Chef{StaffInfo: StaffInfo{Name: "Marco"}},
	}

	roles := []StaffRole{RoleWaiter, RoleChef}
	for i, s := range staff {
		if s.Role() != roles[i] {
			t.Fatalf("role of %s = %s, want %s", s.Info().Name, s.Role(), roles[i])
		}
	}
}

func TestCustomer(t *testing.T) {
	c := &Customer{LoyaltyTier: TierSilver}
	if c.AvgSpending() != 0 {
		t.Fatalf("AvgSpending without visits = %v, want 0", c.AvgSpending())
	}

	_ = c.RecordVisit(40, time.Now())
	_ = c.RecordVisit(20, time.Now())
	if c.AvgSpending() != 30 {
		t.Fatalf("AvgSpending = %v, want 30", c.AvgSpending())
	}

	if err := c.UpgradeTier(TierBronze); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation on downgrade, got %v", err)
	}
	if err := c.UpgradeTier(TierGold); err != nil {
		t.Fatalf("UpgradeTier error: %v", err)
	}
}

func TestCampaign_Advance(t *testing.T) {
	c := &Campaign{Status: CampaignDraft}

	if c.HasPerformance() {
		t.Fatalf("draft campaign must not report performance")
	}
	if err := c.Advance(CampaignActive); err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if err := c.Advance(CampaignScheduled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := c.Advance("paused"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if !c.HasPerformance() {
		t.Fatalf("active campaign must report performance")
	}
}
