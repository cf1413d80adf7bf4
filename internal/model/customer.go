package model

import (
	"fmt"
	"slices"
	"time"
)

// LoyaltyTier описывает уровень программы лояльности.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

var loyaltyTiers = []LoyaltyTier{TierBronze, TierSilver, TierGold, TierPlatinum}

// Segment задаёт тег классификации клиента для таргетинга и фильтрации.
type Segment string

const (
	SegmentVIP        Segment = "vip"
	SegmentRegular    Segment = "regular"
	SegmentOccasional Segment = "occasional"
	SegmentFirstTime  Segment = "first-time"
)

// Customer описывает гостя ресторана и его агрегированную статистику.
type Customer struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	VisitCount    int
	TotalSpent    float64
	FavoriteItems []string
	LastVisit     time.Time
	LoyaltyTier   LoyaltyTier
	Segment       Segment
}

// AvgSpending возвращает средний чек гостя; 0, если визитов не было.
func (c *Customer) AvgSpending() float64 {
	if c.VisitCount <= 0 {
		return 0
	}
	return c.TotalSpent / float64(c.VisitCount)
}

// RecordVisit учитывает визит гостя с указанной суммой.
func (c *Customer) RecordVisit(amount float64, at time.Time) error {
	if amount < 0 {
		return fmt.Errorf("%w: visit amount must be non-negative", ErrValidation)
	}
	c.VisitCount++
	c.TotalSpent += amount
	if at.After(c.LastVisit) {
		c.LastVisit = at
	}
	return nil
}

// UpgradeTier повышает уровень лояльности. Понижение уровня запрещено.
func (c *Customer) UpgradeTier(tier LoyaltyTier) error {
	next := slices.Index(loyaltyTiers, tier)
	if next < 0 {
		return fmt.Errorf("%w: unknown loyalty tier %q", ErrValidation, tier)
	}
	if next < slices.Index(loyaltyTiers, c.LoyaltyTier) {
		return fmt.Errorf("%w: loyalty tier cannot go from %s to %s", ErrValidation, c.LoyaltyTier, tier)
	}
	c.LoyaltyTier = tier
	return nil
}
