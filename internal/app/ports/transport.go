package ports

import (
	"context"

	"glassrelay/internal/domain/relay"
)

// DeviceTransport delivers a command toward the glasses. It must honour
// ctx cancellation; failures are reported as-is and never retried.
type DeviceTransport interface {
	Deliver(ctx context.Context, cmd relay.DisplayCommand) error
}
