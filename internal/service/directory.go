package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// ListStaff возвращает всех сотрудников.
func (s *Service) ListStaff(ctx context.Context) ([]model.Staff, error) {
	return s.directory.Staff(ctx)
}

// StaffMember возвращает сотрудника по идентификатору.
func (s *Service) StaffMember(ctx context.Context, id string) (model.Staff, error) {
	staff, err := s.directory.Staff(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(staff, func(m model.Staff) bool { return m.Info().ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: staff %s", model.ErrNotFound, id)
	}
	return staff[idx], nil
}

// AddChefTask выдаёт повару новое поручение.
func (s *Service) AddChefTask(ctx context.Context, actor, chefID string, taskType model.TaskType, description string) (*model.Chef, model.ChefTask, error) {
	var task model.ChefTask
	chef, err := s.directory.UpdateChef(ctx, chefID, func(c *model.Chef) error {
		var err error
		task, err = c.AddTask(taskType, description, s.now())
		return err
	})
	if err != nil {
		return nil, model.ChefTask{}, err
	}

	s.logger.Info("chef task added",
		zap.String("chef_id", chefID),
		zap.String("task_id", task.ID),
		zap.String("task_type", string(task.TaskType)),
		zap.String("actor", actorOrSystem(actor)),
	)
	return chef, task, nil
}

// StartChefTask переводит поручение повара в работу.
func (s *Service) StartChefTask(ctx context.Context, actor, chefID, taskID string) (*model.Chef, error) {
	chef, err := s.directory.UpdateChef(ctx, chefID, func(c *model.Chef) error {
		return c.StartTask(taskID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chef task started", zap.String("chef_id", chefID), zap.String("task_id", taskID), zap.String("actor", actorOrSystem(actor)))
	return chef, nil
}

// CompleteChefTask отмечает поручение повара выполненным.
func (s *Service) CompleteChefTask(ctx context.Context, actor, chefID, taskID string) (*model.Chef, error) {
	chef, err := s.directory.UpdateChef(ctx, chefID, func(c *model.Chef) error {
		return c.CompleteTask(taskID, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chef task completed", zap.String("chef_id", chefID), zap.String("task_id", taskID), zap.String("actor", actorOrSystem(actor)))
	return chef, nil
}

// DecideLeave утверждает или отклоняет заявку повара на отпуск.
func (s *Service) DecideLeave(ctx context.Context, actor, chefID, requestID string, approve bool) (*model.Chef, error) {
	chef, err := s.directory.UpdateChef(ctx, chefID, func(c *model.Chef) error {
		return c.DecideLeave(requestID, approve)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave request decided",
		zap.String("chef_id", chefID),
		zap.String("request_id", requestID),
		zap.Bool("approved", approve),
		zap.String("actor", actorOrSystem(actor)),
	)
	return chef, nil
}

// Customer возвращает гостя по идентификатору.
func (s *Service) Customer(ctx context.Context, id string) (model.Customer, error) {
	customers, err := s.directory.Customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}

	idx := slices.IndexFunc(customers, func(c model.Customer) bool { return c.ID == id })
	if idx < 0 {
		return model.Customer{}, fmt.Errorf("%w: customer %s", model.ErrNotFound, id)
	}
	return customers[idx], nil
}

// RecordVisit учитывает визит гостя на указанную сумму.
func (s *Service) RecordVisit(ctx context.Context, actor, customerID string, amount float64) (model.Customer, error) {
	c, err := s.directory.UpdateCustomer(ctx, customerID, func(c *model.Customer) error {
		return c.RecordVisit(amount, s.now())
	})
	if err != nil {
		return model.Customer{}, err
	}

	s.logger.Info("customer visit recorded",
		zap.String("customer_id", customerID),
		zap.Float64("amount", amount),
		zap.Int("visits", c.VisitCount),
		zap.String("actor", actorOrSystem(actor)),
	)
	return c, nil
}

// UpgradeTier повышает уровень лояльности гостя.
func (s *Service) UpgradeTier(ctx context.Context, actor, customerID, tier string) (model.Customer, error) {
	c, err := s.directory.UpdateCustomer(ctx, customerID, func(c *model.Customer) error {
		return c.UpgradeTier(model.LoyaltyTier(tier))
	})
	if err != nil {
		return model.Customer{}, err
	}

	s.logger.Info("loyalty tier changed", zap.String("customer_id", customerID), zap.String("tier", tier), zap.String("actor", actorOrSystem(actor)))
	return c, nil
}

// ListCampaigns возвращает все маркетинговые кампании.
func (s *Service) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	return s.directory.Campaigns(ctx)
}

// Campaign возвращает кампанию по идентификатору.
func (s *Service) Campaign(ctx context.Context, id string) (model.Campaign, error) {
	campaigns, err := s.directory.Campaigns(ctx)
	if err != nil {
		return model.Campaign{}, err
	}

	idx := slices.IndexFunc(campaigns, func(c model.Campaign) bool { return c.ID == id })
	if idx < 0 {
		return model.Campaign{}, fmt.Errorf("%w: campaign %s", model.ErrNotFound, id)
	}
	return campaigns[idx], nil
}

// AdvanceCampaign переводит кампанию на следующий этап.
func (s *Service) AdvanceCampaign(ctx context.Context, actor, id, status string) (model.Campaign, error) {
	c, err := s.directory.UpdateCampaign(ctx, id, func(c *model.Campaign) error {
		return c.Advance(model.CampaignStatus(status))
	})
	if err != nil {
		return model.Campaign{}, err
	}

	s.logger.Info("campaign advanced", zap.String("campaign_id", id), zap.String("status", status), zap.String("actor", actorOrSystem(actor)))
	return c, nil
}
