package notificationhandlers

import (
	"context"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/handlerwrapper"
)

// Handlers defines the interface for notification event handlers.
type Handlers interface {
	// HandleRoundEvent turns a committed round change into notifications.
	HandleRoundEvent(ctx context.Context, payload *rounddomain.RoundEvent) ([]handlerwrapper.Result, error)
}
