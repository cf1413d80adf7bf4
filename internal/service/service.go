// Package service реализует бизнес-логику жизненного цикла заказов ресторана.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/export"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/query"
	"github.com/mmeshcher/restaurant-orders/internal/validation"
)

// Repository описывает контракт хранилища заказов, используемый сервисом.
type Repository interface {
	Close() error
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	SaveOrder(ctx context.Context, o *model.Order) error
}

// Directory описывает справочники сотрудников, гостей и кампаний.
type Directory interface {
	Staff(ctx context.Context) ([]model.Staff, error)
	Customers(ctx context.Context) ([]model.Customer, error)
	Campaigns(ctx context.Context) ([]model.Campaign, error)
	UpdateChef(ctx context.Context, id string, fn func(c *model.Chef) error) (*model.Chef, error)
	UpdateCustomer(ctx context.Context, id string, fn func(c *model.Customer) error) (model.Customer, error)
	UpdateCampaign(ctx context.Context, id string, fn func(c *model.Campaign) error) (model.Campaign, error)
}

// EventPublisher отправляет события о смене статуса во внешнюю шину.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, ev model.StatusChange) error
}

// SystemActor подставляется в историю, если инициатор изменения неизвестен.
const SystemActor = "system"

const (
	eventQueueSize = 256
	publishTimeout = 5 * time.Second
)

// Service содержит бизнес-логику сервиса заказов.
type Service struct {
	repo      Repository
	directory Directory
	publisher EventPublisher
	policy    model.TransitionPolicy
	logger    *zap.Logger
	now       func() time.Time
	events    chan model.StatusChange
}

// NewService создаёт новый сервис. publisher может быть nil: тогда события не отправляются.
func NewService(repo Repository, directory Directory, publisher EventPublisher, policy model.TransitionPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
	if publisher != nil {
		s.events = make(chan model.StatusChange, eventQueueSize)
	}
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CreateOrder проверяет данные и создаёт заказ в статусе new.
func (s *Service) CreateOrder(ctx context.Context, actor string, p model.NewOrderParams) (*model.Order, error) {
	if err := validation.ValidateNewOrder(p); err != nil {
		return nil, err
	}

	o, err := model.NewOrder(p, s.now(), actorOrSystem(actor))
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("table", o.TableNumber),
		zap.String("source", string(o.Source)),
		zap.Int64("total_cents", o.TotalCents()),
	)
	return o, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders возвращает заказы, удовлетворяющие критериям, в порядке создания.
func (s *Service) ListOrders(ctx context.Context, c query.Criteria) ([]model.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterOrders(orders, c), nil
}

// UpdateStatus меняет статус заказа. Повторная установка текущего статуса ничего не меняет.
// expectedRevision > 0 требует, чтобы заказ не менялся с момента чтения клиентом.
func (s *Service) UpdateStatus(ctx context.Context, actor, id, status string, expectedRevision int64) (*model.Order, error) {
	to, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	actor = actorOrSystem(actor)

	var from model.OrderStatus
	o, changed, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		from = o.Status
		return o.ChangeStatus(to, s.policy, s.now(), actor)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}

	s.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor", actor),
	)
	s.enqueue(model.StatusChange{
		OrderID:    o.ID,
		From:       from,
		To:         to,
		Actor:      actor,
		OccurredAt: o.Timeline[len(o.Timeline)-1].Timestamp,
		Revision:   o.Revision,
	})
	return o, nil
}

// AssignWaiter назначает официанта заказу. Пустое имя снимает назначение.
func (s *Service) AssignWaiter(ctx context.Context, actor, id, name string, expectedRevision int64) (*model.Order, error) {
	if err := validation.ValidateStaffName(name); err != nil {
		return nil, err
	}

	o, changed, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		return o.AssignWaiter(name), nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("waiter assigned", zap.String("order_id", id), zap.String("waiter", o.AssignedWaiter), zap.String("actor", actorOrSystem(actor)))
	}
	return o, nil
}

// AssignChef назначает повара заказу. Пустое имя снимает назначение.
func (s *Service) AssignChef(ctx context.Context, actor, id, name string, expectedRevision int64) (*model.Order, error) {
	if err := validation.ValidateStaffName(name); err != nil {
		return nil, err
	}

	o, changed, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		return o.AssignChef(name), nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("chef assigned", zap.String("order_id", id), zap.String("chef", o.AssignedChef), zap.String("actor", actorOrSystem(actor)))
	}
	return o, nil
}

// AddItem добавляет позицию в заказ.
func (s *Service) AddItem(ctx context.Context, actor, id string, item model.OrderItem, expectedRevision int64) (*model.Order, error) {
	if err := validation.ValidateItem(item); err != nil {
		return nil, err
	}

	var added model.OrderItem
	o, _, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		var err error
		added, err = o.AddItem(item)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order item added",
		zap.String("order_id", id),
		zap.String("item_id", added.ID),
		zap.Int("quantity", added.Quantity),
		zap.String("actor", actorOrSystem(actor)),
	)
	return o, nil
}

// RemoveItem удаляет позицию из заказа. Последнюю позицию удалить нельзя.
func (s *Service) RemoveItem(ctx context.Context, actor, id, itemID string, expectedRevision int64) (*model.Order, error) {
	o, _, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		_, err := o.RemoveItem(itemID)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order item removed", zap.String("order_id", id), zap.String("item_id", itemID), zap.String("actor", actorOrSystem(actor)))
	return o, nil
}

// SetItemQuantity меняет количество позиции заказа.
func (s *Service) SetItemQuantity(ctx context.Context, actor, id, itemID string, quantity int, expectedRevision int64) (*model.Order, error) {
	o, changed, err := s.mutate(ctx, id, expectedRevision, func(o *model.Order) (bool, error) {
		for _, it := range o.Items {
			if it.ID == itemID && it.Quantity == quantity {
				return false, nil
			}
		}
		_, err := o.SetItemQuantity(itemID, quantity)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}

	s.logger.Info("order item quantity changed",
		zap.String("order_id", id),
		zap.String("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.String("actor", actorOrSystem(actor)),
	)
	return o, nil
}

// mutate применяет fn к копии заказа и сохраняет её, если fn сообщила об изменении.
// При ошибке хранилище не меняется.
func (s *Service) mutate(ctx context.Context, id string, expectedRevision int64, fn func(o *model.Order) (bool, error)) (*model.Order, bool, error) {
	if id == "" {
		return nil, false, fmt.Errorf("%w: order id is required", model.ErrValidation)
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if expectedRevision > 0 && o.Revision != expectedRevision {
		return nil, false, fmt.Errorf("%w: order %s has revision %d, got %d", model.ErrStaleRevision, id, o.Revision, expectedRevision)
	}

	changed, err := fn(o)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return o, false, nil
	}

	if err := s.repo.SaveOrder(ctx, o); err != nil {
		return nil, false, fmt.Errorf("save order %s: %w", id, err)
	}
	return o, true, nil
}

// ExportCSV записывает в w отфильтрованный список заказов в формате CSV.
// Время заказов выводится в зоне loc, той же, в которой разбирается фильтр по дате.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, c query.Criteria, loc *time.Location) error {
	orders, err := s.ListOrders(ctx, c)
	if err != nil {
		return err
	}
	return export.WriteOrdersCSV(w, orders, loc)
}

// OrderMetrics возвращает сводку по отфильтрованным заказам. Выручка считается
// по всем заказам независимо от фильтра.
func (s *Service) OrderMetrics(ctx context.Context, c query.Criteria) (query.OrderMetrics, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return query.OrderMetrics{}, err
	}

	m := query.AggregateOrders(query.FilterOrders(orders, c))
	m.Revenue = query.TotalRevenue(orders)
	return m, nil
}

// Dashboard возвращает показатели главной панели на текущий момент.
func (s *Service) Dashboard(ctx context.Context) (query.DashboardMetrics, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return query.DashboardMetrics{}, err
	}
	return query.Dashboard(orders, s.now()), nil
}

// CampaignMetrics возвращает сводку по маркетинговым кампаниям.
func (s *Service) CampaignMetrics(ctx context.Context) (query.CampaignMetrics, error) {
	campaigns, err := s.directory.Campaigns(ctx)
	if err != nil {
		return query.CampaignMetrics{}, err
	}
	return query.AggregateCampaigns(campaigns), nil
}

// StaffSummary возвращает сводку по сотрудникам.
func (s *Service) StaffSummary(ctx context.Context) (query.StaffMetrics, error) {
	staff, err := s.directory.Staff(ctx)
	if err != nil {
		return query.StaffMetrics{}, err
	}
	return query.SummarizeStaff(staff)
}

// Customers возвращает гостей, отобранных по строке поиска и сегменту, и сводку по ним.
func (s *Service) Customers(ctx context.Context, search, segment string) ([]model.Customer, query.CustomerMetrics, error) {
	customers, err := s.directory.Customers(ctx)
	if err != nil {
		return nil, query.CustomerMetrics{}, err
	}
	filtered := query.FilterCustomers(customers, search, segment)
	return filtered, query.AggregateCustomers(filtered), nil
}

func (s *Service) enqueue(ev model.StatusChange) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event queue is full, status change dropped", zap.String("order_id", ev.OrderID), zap.String("to", string(ev.To)))
	}
}

// StartEventPublishing запускает фоновую отправку событий о смене статуса.
// Ошибки отправки логируются и не влияют на уже сохранённые изменения.
func (s *Service) StartEventPublishing(ctx context.Context) {
	if s.events == nil {
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.events:
				s.publish(ctx, ev)
			}
		}
	}()
}

func (s *Service) publish(ctx context.Context, ev model.StatusChange) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.PublishStatusChange(ctx, ev); err != nil {
		s.logger.Error("failed to publish status change",
			zap.String("order_id", ev.OrderID),
			zap.String("to", string(ev.To)),
			zap.Error(err),
		)
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
