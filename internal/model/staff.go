package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StaffStatus описывает текущую доступность сотрудника.
type StaffStatus string

const (
	StaffAvailable StaffStatus = "available"
	StaffBusy      StaffStatus = "busy"
	StaffBreak     StaffStatus = "break"
	StaffOffline   StaffStatus = "offline"
)

// StaffRole различает варианты сотрудников.
type StaffRole string

const (
	RoleWaiter StaffRole = "waiter"
	RoleChef   StaffRole = "chef"
)

// StaffInfo содержит поля, общие для всех сотрудников.
type StaffInfo struct {
	ID            string
	Name          string
	Status        StaffStatus
	Shift         string
	CurrentOrders []string
}

// Staff описывает сотрудника ресторана: *Waiter или *Chef.
type Staff interface {
	Info() StaffInfo
	Role() StaffRole
	isStaff()
}

// Waiter описывает официанта.
type Waiter struct {
	StaffInfo
	Phone             string
	AssignedTables    []int
	OrdersServedToday int
	AvgOrderValue     float64
	Rating            float64
	TipsToday         float64
}

func (w *Waiter) Info() StaffInfo { return w.StaffInfo }
func (w *Waiter) Role() StaffRole { return RoleWaiter }
func (w *Waiter) isStaff() {}

// Station обозначает участок кухни, за который отвечает повар.
type Station string

const (
	StationGrill    Station = "grill"
	StationFry      Station = "fry"
	StationSalad    Station = "salad"
	StationDesserts Station = "desserts"
	StationMain     Station = "main"
)

// Stations возвращает все участки кухни.
func Stations() []Station {
	return []Station{StationGrill, StationFry, StationSalad, StationDesserts, StationMain}
}

// TaskType описывает вид поручения повару.
type TaskType string

const (
	TaskMealPreparation        TaskType = "meal_preparation"
	TaskCleaning               TaskType = "cleaning"
	TaskIngredientPreprocess   TaskType = "ingredient_preprocessing"
	TaskFoodServingSupervision TaskType = "food_serving_supervision"
	TaskInventoryChecks        TaskType = "inventory_checks"
)

// TaskStatus описывает состояние поручения.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// ChefTask описывает поручение повару.
type ChefTask struct {
	ID            string
	TaskType      TaskType
	Description   string
	Status        TaskStatus
	AssignedDate  time.Time
	CompletedDate *time.Time
}

// AttendanceStatus описывает отметку посещаемости.
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
	AttendanceLate       AttendanceStatus = "late"
	AttendanceEarlyLeave AttendanceStatus = "early_leave"
)

// AttendanceLog описывает посещаемость повара за день.
type AttendanceLog struct {
	ID      string
	Date    time.Time
	TimeIn  *time.Time
	TimeOut *time.Time
	Status  AttendanceStatus
}

// LeaveType описывает вид отпуска.
type LeaveType string

const (
	LeaveSick      LeaveType = "sick"
	LeaveAnnual    LeaveType = "annual"
	LeaveEmergency LeaveType = "emergency"
)

// LeaveApproval описывает решение по заявке на отпуск.
type LeaveApproval string

const (
	LeavePending  LeaveApproval = "pending"
	LeaveApproved LeaveApproval = "approved"
	LeaveRejected LeaveApproval = "rejected"
)

// LeaveRequest описывает заявку повара на отпуск.
type LeaveRequest struct {
	ID             string
	LeaveType      LeaveType
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	ApprovalStatus LeaveApproval
}

// Chef описывает повара. Поручения, посещаемость и заявки на отпуск
// изменяются только через методы Chef.
type Chef struct {
	StaffInfo
	Station              Station
	Expertise            []string
	OrdersCompletedToday int
	AvgCookingTime       float64
	AccuracyRate         float64

	tasks          []ChefTask
	attendanceLogs []AttendanceLog
	leaveRequests  []LeaveRequest
}

func (c *Chef) Info() StaffInfo { return c.StaffInfo }
func (c *Chef) Role() StaffRole { return RoleChef }
func (c *Chef) isStaff() {}

// Tasks возвращает копию списка поручений.
func (c *Chef) Tasks() []ChefTask { return slices.Clone(c.tasks) }

// AttendanceLogs возвращает копию журнала посещаемости.
func (c *Chef) AttendanceLogs() []AttendanceLog { return slices.Clone(c.attendanceLogs) }

// LeaveRequests возвращает копию заявок на отпуск.
func (c *Chef) LeaveRequests() []LeaveRequest { return slices.Clone(c.leaveRequests) }

// AddTask добавляет поручение в статусе pending.
func (c *Chef) AddTask(taskType TaskType, description string, at time.Time) (ChefTask, error) {
	switch taskType {
	case TaskMealPreparation, TaskCleaning, TaskIngredientPreprocess, TaskFoodServingSupervision, TaskInventoryChecks:
	default:
		return ChefTask{}, fmt.Errorf("%w: unknown task type %q", ErrValidation, taskType)
	}

	task := ChefTask{
		ID:           uuid.NewString(),
		TaskType:     taskType,
		Description:  strings.TrimSpace(description),
		Status:       TaskPending,
		AssignedDate: at,
	}
	c.tasks = append(c.tasks, task)
	return task, nil
}

// StartTask переводит поручение в работу.
func (c *Chef) StartTask(taskID string) error {
	idx := slices.IndexFunc(c.tasks, func(t ChefTask) bool { return t.ID == taskID })
	if idx < 0 {
		return fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	if c.tasks[idx].Status != TaskPending {
		return fmt.Errorf("%w: task %s is %s", ErrValidation, taskID, c.tasks[idx].Status)
	}
	c.tasks[idx].Status = TaskInProgress
	return nil
}

// CompleteTask отмечает поручение выполненным. Повторный вызов ничего не меняет.
func (c *Chef) CompleteTask(taskID string, at time.Time) error {
	idx := slices.IndexFunc(c.tasks, func(t ChefTask) bool { return t.ID == taskID })
	if idx < 0 {
		return fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	if c.tasks[idx].Status == TaskCompleted {
		return nil
	}
	c.tasks[idx].Status = TaskCompleted
	c.tasks[idx].CompletedDate = &at
	return nil
}

// LogAttendance добавляет отметку посещаемости. На один день допускается одна отметка.
func (c *Chef) LogAttendance(log AttendanceLog) (AttendanceLog, error) {
	switch log.Status {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceEarlyLeave:
	default:
		return AttendanceLog{}, fmt.Errorf("%w: unknown attendance status %q", ErrValidation, log.Status)
	}
	if log.TimeIn != nil && log.TimeOut != nil && log.TimeOut.Before(*log.TimeIn) {
		return AttendanceLog{}, fmt.Errorf("%w: time out before time in", ErrValidation)
	}
	for _, existing := range c.attendanceLogs {
		if SameDay(existing.Date, log.Date) {
			return AttendanceLog{}, fmt.Errorf("%w: attendance for %s already logged", ErrValidation, log.Date.Format(time.DateOnly))
		}
	}

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	c.attendanceLogs = append(c.attendanceLogs, log)
	return log, nil
}

// RequestLeave регистрирует заявку на отпуск в статусе pending.
func (c *Chef) RequestLeave(leaveType LeaveType, start, end time.Time, reason string) (LeaveRequest, error) {
	switch leaveType {
	case LeaveSick, LeaveAnnual, LeaveEmergency:
	default:
		return LeaveRequest{}, fmt.Errorf("%w: unknown leave type %q", ErrValidation, leaveType)
	}
	if end.Before(start) {
		return LeaveRequest{}, fmt.Errorf("%w: leave ends before it starts", ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return LeaveRequest{}, fmt.Errorf("%w: leave reason is required", ErrValidation)
	}

	req := LeaveRequest{
		ID:             uuid.NewString(),
		LeaveType:      leaveType,
		StartDate:      start,
		EndDate:        end,
		Reason:         strings.TrimSpace(reason),
		ApprovalStatus: LeavePending,
	}
	c.leaveRequests = append(c.leaveRequests, req)
	return req, nil
}

// DecideLeave утверждает или отклоняет заявку. Решение принимается один раз.
func (c *Chef) DecideLeave(requestID string, approve bool) error {
	idx := slices.IndexFunc(c.leaveRequests, func(r LeaveRequest) bool { return r.ID == requestID })
	if idx < 0 {
		return fmt.Errorf("%w: leave request %s", ErrNotFound, requestID)
	}
	if c.leaveRequests[idx].ApprovalStatus != LeavePending {
		return fmt.Errorf("%w: leave request %s already %s", ErrValidation, requestID, c.leaveRequests[idx].ApprovalStatus)
	}

	if approve {
		c.leaveRequests[idx].ApprovalStatus = LeaveApproved
	} else {
		c.leaveRequests[idx].ApprovalStatus = LeaveRejected
	}
	return nil
}

// CloneStaff возвращает глубокую копию сотрудника.
func CloneStaff(s Staff) Staff {
	switch v := s.(type) {
	case *Waiter:
		cp := *v
		cp.CurrentOrders = slices.Clone(v.CurrentOrders)
		cp.AssignedTables = slices.Clone(v.AssignedTables)
		return &cp
	case *Chef:
		cp := *v
		cp.CurrentOrders = slices.Clone(v.CurrentOrders)
		cp.Expertise = slices.Clone(v.Expertise)
		cp.tasks = slices.Clone(v.tasks)
		cp.attendanceLogs = slices.Clone(v.attendanceLogs)
		cp.leaveRequests = slices.Clone(v.leaveRequests)
		return &cp
	default:
		return s
	}
}
