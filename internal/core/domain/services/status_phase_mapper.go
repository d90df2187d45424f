package services

import (
	"fulfillment/internal/core/domain/model/order"

	"go.uber.org/zap"
)

// StatusPhaseMapper is the entry point every consumer uses to turn a status into a
// board phase. It delegates to the lookup table in the order package and reports
// undeclared statuses as warnings instead of failing, so a stray value coming from
// storage never breaks a board or a filter.
type StatusPhaseMapper struct {
	logger *zap.Logger
}

// NewStatusPhaseMapper creates a mapper. A nil logger disables the warnings.
func NewStatusPhaseMapper(logger *zap.Logger) StatusPhaseMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return StatusPhaseMapper{logger: logger.With(zap.String("component", "status_phase_mapper"))}
}

// PhaseOf returns the phase of s, falling back to order.DefaultPhase.
func (m StatusPhaseMapper) PhaseOf(s order.Status) order.Phase {
	phase, known := order.LookupPhase(s)
	if !known {
		m.logger.Warn("unknown order status, using default phase",
			zap.String("status", string(s)),
			zap.String("phase", string(phase)))
	}
	return phase
}

// Group buckets orders by phase in board order. Every declared phase is present,
// possibly empty.
func (m StatusPhaseMapper) Group(orders []*order.Order) map[order.Phase][]*order.Order {
	out := make(map[order.Phase][]*order.Order, len(order.Phases()))
	for _, p := range order.Phases() {
		out[p] = nil
	}
	for _, o := range orders {
		p := m.PhaseOf(o.Status())
		out[p] = append(out[p], o)
	}
	return out
}
