// Package handler содержит HTTP-обработчики API сервиса заказов.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/middleware"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/query"
	"github.com/mmeshcher/restaurant-orders/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateOrder(ctx context.Context, actor string, p model.NewOrderParams) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, c query.Criteria) ([]model.Order, error)
	UpdateStatus(ctx context.Context, actor, id, status string, expectedRevision int64) (*model.Order, error)
	AssignWaiter(ctx context.Context, actor, id, name string, expectedRevision int64) (*model.Order, error)
	AssignChef(ctx context.Context, actor, id, name string, expectedRevision int64) (*model.Order, error)
	AddItem(ctx context.Context, actor, id string, item model.OrderItem, expectedRevision int64) (*model.Order, error)
	RemoveItem(ctx context.Context, actor, id, itemID string, expectedRevision int64) (*model.Order, error)
	SetItemQuantity(ctx context.Context, actor, id, itemID string, quantity int, expectedRevision int64) (*model.Order, error)
	ExportCSV(ctx context.Context, w io.Writer, c query.Criteria, loc *time.Location) error
	OrderMetrics(ctx context.Context, c query.Criteria) (query.OrderMetrics, error)
	Dashboard(ctx context.Context) (query.DashboardMetrics, error)
	CampaignMetrics(ctx context.Context) (query.CampaignMetrics, error)
	StaffSummary(ctx context.Context) (query.StaffMetrics, error)
	Customers(ctx context.Context, search, segment string) ([]model.Customer, query.CustomerMetrics, error)

	ListStaff(ctx context.Context) ([]model.Staff, error)
	StaffMember(ctx context.Context, id string) (model.Staff, error)
	AddChefTask(ctx context.Context, actor, chefID string, taskType model.TaskType, description string) (*model.Chef, model.ChefTask, error)
	StartChefTask(ctx context.Context, actor, chefID, taskID string) (*model.Chef, error)
	CompleteChefTask(ctx context.Context, actor, chefID, taskID string) (*model.Chef, error)
	DecideLeave(ctx context.Context, actor, chefID, requestID string, approve bool) (*model.Chef, error)
	Customer(ctx context.Context, id string) (model.Customer, error)
	RecordVisit(ctx context.Context, actor, customerID string, amount float64) (model.Customer, error)
	UpgradeTier(ctx context.Context, actor, customerID, tier string) (model.Customer, error)
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	Campaign(ctx context.Context, id string) (model.Campaign, error)
	AdvanceCampaign(ctx context.Context, actor, id, status string) (model.Campaign, error)
}

// Handler реализует HTTP-обработчики API сервиса заказов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	location       *time.Location
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// Даты фильтров интерпретируются в зоне loc; nil означает time.Local.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		location:       loc,
	}
}

type sessionRequest struct {
	Name string `json:"name"`
}

// StartSession выдаёт cookie сессии сотруднику с указанным именем.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || validation.ValidateStaffName(name) != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	h.authMiddleware.SetSessionCookie(w, name)
	w.WriteHeader(http.StatusOK)
}

// ListOrders возвращает отфильтрованный список заказов.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), c)
	if err != nil {
		h.writeError(w, err, "list orders error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateOrder создаёт заказ от имени текущего сотрудника.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.CreateOrder(r.Context(), actor(r), req.params())
	if err != nil {
		h.writeError(w, err, "create order error")
		return
	}

	w.Header().Set("Location", "/api/orders/"+o.ID)
	h.writeOrder(w, http.StatusCreated, o)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get order error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus меняет статус заказа. Заголовок If-Match с ревизией заказа необязателен.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	revision, ok := ifMatch(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), actor(r), chi.URLParam(r, "id"), req.Status, revision)
	if err != nil {
		h.writeError(w, err, "update status error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

type assignRequest struct {
	Name string `json:"name"`
}

// AssignWaiter назначает официанта заказу; пустое имя снимает назначение.
func (h *Handler) AssignWaiter(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.service.AssignWaiter)
}

// AssignChef назначает повара заказу; пустое имя снимает назначение.
func (h *Handler) AssignChef(w http.ResponseWriter, r *http.Request) {
	h.assign(w, r, h.service.AssignChef)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor, id, name string, expectedRevision int64) (*model.Order, error)) {
	revision, ok := ifMatch(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := fn(r.Context(), actor(r), chi.URLParam(r, "id"), req.Name, revision)
	if err != nil {
		h.writeError(w, err, "assign staff error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

// AddItem добавляет позицию в заказ.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	revision, ok := ifMatch(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.AddItem(r.Context(), actor(r), chi.URLParam(r, "id"), req.item(), revision)
	if err != nil {
		h.writeError(w, err, "add item error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

// RemoveItem удаляет позицию из заказа.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	revision, ok := ifMatch(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.RemoveItem(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), revision)
	if err != nil {
		h.writeError(w, err, "remove item error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetItemQuantity меняет количество позиции заказа.
func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	revision, ok := ifMatch(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.SetItemQuantity(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.Quantity, revision)
	if err != nil {
		h.writeError(w, err, "set item quantity error")
		return
	}
	h.writeOrder(w, http.StatusOK, o)
}

// ExportOrders выгружает отфильтрованный список заказов в CSV.
func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf, c, h.location); err != nil {
		h.writeError(w, err, "export orders error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders-`+time.Now().In(h.location).Format(time.DateOnly)+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("write csv error", zap.Error(err))
	}
}

// OrderMetrics возвращает сводку по отфильтрованным заказам.
func (h *Handler) OrderMetrics(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteria(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	m, err := h.service.OrderMetrics(r.Context(), c)
	if err != nil {
		h.writeError(w, err, "order metrics error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Dashboard возвращает показатели главной панели.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, err, "dashboard error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CampaignMetrics возвращает сводку по маркетинговым кампаниям.
func (h *Handler) CampaignMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.CampaignMetrics(r.Context())
	if err != nil {
		h.writeError(w, err, "campaign metrics error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// StaffSummary возвращает сводку по сотрудникам.
func (h *Handler) StaffSummary(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.StaffSummary(r.Context())
	if err != nil {
		h.writeError(w, err, "staff summary error")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Customers возвращает гостей, отобранных по строке поиска и сегменту.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customers, metrics, err := h.service.Customers(r.Context(), q.Get("search"), q.Get("segment"))
	if err != nil {
		h.writeError(w, err, "customers error")
		return
	}

	resp := customersResponse{
		Customers: make([]customerResponse, 0, len(customers)),
		Metrics:   metrics,
	}
	for i := range customers {
		resp.Customers = append(resp.Customers, newCustomerResponse(&customers[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) criteria(r *http.Request) (query.Criteria, error) {
	q := r.URL.Query()
	c := query.Criteria{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Source: q.Get("source"),
		Waiter: q.Get("waiter"),
	}

	if v := q.Get("date"); v != "" {
		day, err := time.ParseInLocation(time.DateOnly, v, h.location)
		if err != nil {
			return query.Criteria{}, err
		}
		c.Date = &day
	}
	return c, nil
}

// writeError переводит ошибку сервиса в HTTP-статус. Неизвестные ошибки логируются.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	var status int
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrStaleRevision), errors.Is(err, model.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		h.logger.Error(msg, zap.Error(err))
		status = http.StatusInternalServerError
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) writeOrder(w http.ResponseWriter, status int, o *model.Order) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(o.Revision, 10)))
	writeJSON(w, status, newOrderResponse(o))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ifMatch разбирает необязательный заголовок If-Match с ревизией заказа. 0 означает отсутствие проверки.
func ifMatch(r *http.Request) (int64, bool) {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if v == "" {
		return 0, true
	}

	revision, err := strconv.ParseInt(strings.Trim(v, `"`), 10, 64)
	if err != nil || revision <= 0 {
		return 0, false
	}
	return revision, true
}

func actor(r *http.Request) string {
	name, _ := middleware.ActorFromContext(r.Context())
	return name
}
