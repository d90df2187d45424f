package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// PhaseAuthorizer decides whether actor may move orders into phase, or between the
// statuses of phase. The core only asks; it does not implement authorization.
type PhaseAuthorizer interface {
	CanEditPhase(ctx context.Context, actor string, phase order.Phase) (bool, error)
}
