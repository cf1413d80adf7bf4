// Package validation содержит проверки входных данных на границе API.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Ограничения формы создания заказа.
const (
	MinTableNumber        = 1
	MaxTableNumber        = 100
	MaxCustomerNameLength = 100
	MaxInstructionsLength = 500
	MaxStaffNameLength    = 100
)

// ValidateNewOrder проверяет данные нового заказа. Ошибка оборачивает model.ErrValidation.
func ValidateNewOrder(p model.NewOrderParams) error {
	if p.TableNumber < MinTableNumber || p.TableNumber > MaxTableNumber {
		return fmt.Errorf("%w: table number must be between %d and %d", model.ErrValidation, MinTableNumber, MaxTableNumber)
	}

	name := strings.TrimSpace(p.CustomerName)
	if name == "" {
		return fmt.Errorf("%w: customer name is required", model.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name is longer than %d characters", model.ErrValidation, MaxCustomerNameLength)
	}

	if _, err := model.ParseOrderSource(string(p.Source)); err != nil {
		return err
	}

	if len(p.Items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", model.ErrValidation)
	}
	for _, it := range p.Items {
		if err := ValidateItem(it); err != nil {
			return err
		}
	}

	if p.EstimatedTime < 0 {
		return fmt.Errorf("%w: estimated time must be non-negative", model.ErrValidation)
	}

	return nil
}

// ValidateItem проверяет позицию заказа.
func ValidateItem(it model.OrderItem) error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%w: item name is required", model.ErrValidation)
	}
	if it.Quantity < 1 {
		return fmt.Errorf("%w: quantity of %q must be at least 1", model.ErrValidation, it.Name)
	}
	if it.Price < 0 {
		return fmt.Errorf("%w: price of %q must be non-negative", model.ErrValidation, it.Name)
	}
	if utf8.RuneCountInString(it.SpecialInstructions) > MaxInstructionsLength {
		return fmt.Errorf("%w: instructions for %q are longer than %d characters", model.ErrValidation, it.Name, MaxInstructionsLength)
	}
	return nil
}

// ValidateStaffName проверяет имя сотрудника. Пустое имя допустимо и означает снятие назначения.
func ValidateStaffName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > MaxStaffNameLength {
		return fmt.Errorf("%w: staff name is longer than %d characters", model.ErrValidation, MaxStaffNameLength)
	}
	return nil
}
