package services

import (
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// SLAPolicy yields the delivery SLA, in days, per order type.
type SLAPolicy struct {
	days map[order.Type]int
}

// NewSLAPolicy starts from the built-in SLA of each type and applies positive overrides.
func NewSLAPolicy(overrides map[order.Type]int) SLAPolicy {
	days := make(map[order.Type]int, len(order.Types()))
	for _, t := range order.Types() {
		days[t] = t.DefaultSLADays()
	}
	for t, d := range overrides {
		if d > 0 {
			days[t] = d
		}
	}
	return SLAPolicy{days: days}
}

// Days returns the SLA of t.
func (p SLAPolicy) Days(t order.Type) int {
	if d, ok := p.days[t]; ok {
		return d
	}
	return order.TypeStandard.DefaultSLADays()
}

// DeadlineFrom computes today + SLA days, at midnight in now's location.
func (p SLAPolicy) DeadlineFrom(now time.Time, t order.Type) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, p.Days(t))
}
