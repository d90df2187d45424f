package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Phase is the coarse pipeline stage used for board columns, filters and badges.
// A Phase is never stored: it is derived from Status through phaseTable.
type Phase string

const (
	PhaseOrderGeneration Phase = "order_generation"
	PhasePurchasing      Phase = "purchasing"
	PhaseProduction      Phase = "production"
	PhaseWarehouse       Phase = "warehouse"
	PhaseInvoicing       Phase = "invoicing"
	PhaseLogistics       Phase = "logistics"
	PhaseCompleted       Phase = "completed"
	PhaseException       Phase = "exception"
	PhaseCancelled       Phase = "cancelled"
)

// DefaultPhase is where unrecognized statuses land. It is terminal so that an
// unknown value never shows up as actionable work.
const DefaultPhase = PhaseCompleted

// phaseOrder is the column order of the board.
var phaseOrder = []Phase{
	PhaseOrderGeneration,
	PhasePurchasing,
	PhaseProduction,
	PhaseWarehouse,
	PhaseInvoicing,
	PhaseLogistics,
	PhaseCompleted,
	PhaseException,
	PhaseCancelled,
}

// phaseStatuses declares, per phase, its statuses in display order. The first
// entry of each list is not necessarily the default; see phaseDefaults.
var phaseStatuses = map[Phase][]Status{
	PhaseOrderGeneration: {
		StatusDraft, StatusNew, StatusPendingReview, StatusCostEstimate,
		StatusOrderGeneration, StatusAwaitingApproval, StatusApproved,
	},
	PhasePurchasing: {
		StatusPurchaseRequired, StatusPurchaseRequested, StatusPurchaseQuoted,
		StatusPurchaseOrdered, StatusAwaitingSupplier, StatusPurchaseReceived,
	},
	PhaseProduction: {
		StatusAwaitingProduction, StatusProductionScheduled, StatusInProduction,
		StatusProductionPaused, StatusQualityCheck, StatusProductionCompleted,
	},
	PhaseWarehouse: {
		StatusSeparation, StatusInSeparation, StatusAwaitingStock,
		StatusPacking, StatusPacked, StatusReadyToInvoice,
	},
	PhaseInvoicing: {
		StatusInvoiceRequested, StatusInvoiced, StatusInvoiceRejected, StatusAwaitingPayment,
	},
	PhaseLogistics: {
		StatusAwaitingPickup, StatusDeliveryScheduled, StatusCollected, StatusInTransit,
		StatusOutForDelivery, StatusDeliveryFailed, StatusReturned,
	},
	PhaseCompleted: {StatusDelivered, StatusCompleted},
	PhaseException: {StatusException, StatusOnHold},
	PhaseCancelled: {StatusCancelled},
}

// phaseDefaults is the status an order receives when it is dropped onto a phase.
var phaseDefaults = map[Phase]Status{
	PhaseOrderGeneration: StatusOrderGeneration,
	PhasePurchasing:      StatusPurchaseRequired,
	PhaseProduction:      StatusAwaitingProduction,
	PhaseWarehouse:       StatusSeparation,
	PhaseInvoicing:       StatusInvoiceRequested,
	PhaseLogistics:       StatusAwaitingPickup,
	PhaseCompleted:       StatusCompleted,
	PhaseException:       StatusException,
	PhaseCancelled:       StatusCancelled,
}

// phaseTable is the status -> phase lookup, built once from phaseStatuses.
var phaseTable = buildPhaseTable()

func buildPhaseTable() map[Status]Phase {
	table := make(map[Status]Phase)
	for phase, statuses := range phaseStatuses {
		for _, s := range statuses {
			if other, dup := table[s]; dup {
				panic(fmt.Sprintf("status %q declared in phases %q and %q", s, other, phase))
			}
			table[s] = phase
		}
	}
	return table
}

// LookupPhase returns the phase of s and whether s is a declared status.
// For undeclared statuses it returns DefaultPhase and false.
func LookupPhase(s Status) (Phase, bool) {
	p, ok := phaseTable[s]
	if !ok {
		return DefaultPhase, false
	}
	return p, true
}

// PhaseOf maps a status onto its phase. It is total: undeclared statuses map to
// DefaultPhase. Use services.StatusPhaseMapper where the fallback must be reported.
func PhaseOf(s Status) Phase {
	p, _ := LookupPhase(s)
	return p
}

// Phases returns the declared phases in board order.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// ParsePhase converts external input into a declared Phase.
func ParsePhase(raw string) (Phase, error) {
	p := Phase(raw)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate rejects undeclared phases.
func (p Phase) Validate() error {
	if _, ok := phaseDefaults[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("phase", fmt.Errorf("%q is not a declared phase", string(p)))
	}
	return nil
}

// DefaultStatus is the status assigned when an order is dropped onto p.
func (p Phase) DefaultStatus() Status {
	return phaseDefaults[p]
}

// Statuses lists the statuses that belong to p.
func (p Phase) Statuses() []Status {
	src := phaseStatuses[p]
	out := make([]Status, len(src))
	copy(out, src)
	return out
}

// Contains reports whether s belongs to p.
func (p Phase) Contains(s Status) bool {
	got, ok := phaseTable[s]
	return ok && got == p
}

// IsTimeSensitive reports whether entering p derives a new delivery deadline.
func (p Phase) IsTimeSensitive() bool {
	return p == PhaseOrderGeneration
}

// IsTerminal reports whether orders in p no longer move through the pipeline.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled
}

// AllowsItemChanges reports whether items may still be added or removed in p.
func (p Phase) AllowsItemChanges() bool {
	return p == PhaseOrderGeneration || p == PhasePurchasing
}

func (p Phase) String() string {
	return string(p)
}
