package model

import (
	"fmt"
	"slices"
	"time"
)

// CampaignType описывает канал маркетинговой кампании.
type CampaignType string

const (
	CampaignPush  CampaignType = "push"
	CampaignSMS   CampaignType = "sms"
	CampaignEmail CampaignType = "email"
	CampaignQR    CampaignType = "qr"
)

// CampaignStatus описывает этап кампании. Этапы проходятся только вперёд.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

var campaignStatuses = []CampaignStatus{CampaignDraft, CampaignScheduled, CampaignActive, CampaignCompleted}

// Campaign описывает маркетинговую кампанию и её показатели.
type Campaign struct {
	ID             string
	Name           string
	Type           CampaignType
	TargetSegments []Segment
	Status         CampaignStatus
	ScheduledAt    *time.Time
	SentCount      int
	OpenRate       float64
	ClickRate      float64
	RedemptionRate float64
	Content        string
}

// HasPerformance сообщает, имеют ли смысл счётчики эффективности кампании.
func (c *Campaign) HasPerformance() bool {
	return c.Status == CampaignActive || c.Status == CampaignCompleted
}

// Advance переводит кампанию на следующий этап. Возврат на прежний этап запрещён.
func (c *Campaign) Advance(to CampaignStatus) error {
	next := slices.Index(campaignStatuses, to)
	if next < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if next <= slices.Index(campaignStatuses, c.Status) {
		return fmt.Errorf("%w: campaign %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	return nil
}
