package display

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const DefaultTimeout = 5 * time.Second

var ErrInvalidRequest = errors.New("invalid display request")

type DeliveryError struct {
	CommandID string
	Action    relay.DisplayAction
	DeviceID  string
	Err       error
}

func (e *DeliveryError) Error() string {
	target := e.DeviceID
	if target == "" {
		target = "all devices"
	}
	return fmt.Sprintf("%s to %s not delivered: %v", e.Action, target, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ports.ErrDelivery, e.Err}
}

// UseCase is the one-way command channel toward the glasses. Commands are
// attempted once, in call order, and never queued.
type UseCase struct {
	Transport ports.DeviceTransport
	Metrics   ports.RelayMetrics
	// Limiter paces commands toward the transport; nil disables pacing.
	Limiter *rate.Limiter
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
}

func (u UseCase) Display(ctx context.Context, req Request) (Ack, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Ack{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if req.Duration < 0 {
		return Ack{}, fmt.Errorf("%w: duration must not be negative", ErrInvalidRequest)
	}
	duration := req.Duration
	if duration == 0 {
		duration = relay.DefaultDisplayDuration
	}
	return u.send(ctx, relay.DisplayCommand{
		Action:   relay.DisplayShow,
		Text:     req.Text,
		DeviceID: strings.TrimSpace(req.DeviceID),
		Duration: duration,
	})
}

func (u UseCase) Clear(ctx context.Context, req Request) (Ack, error) {
	return u.send(ctx, relay.DisplayCommand{
		Action:   relay.DisplayClear,
		DeviceID: strings.TrimSpace(req.DeviceID),
	})
}

func (u UseCase) send(ctx context.Context, cmd relay.DisplayCommand) (Ack, error) {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	newID := u.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	cmd.ID = newID()
	cmd.IssuedAt = nowFn().UTC()

	timeout := u.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := u.deliver(ctx, cmd)
	if u.Metrics != nil {
		u.Metrics.RecordDisplay(cmd.Action, err == nil)
	}
	if err != nil {
		hlog.CtxWarnf(ctx, "display command failed: id=%s action=%s device=%q err=%v", cmd.ID, cmd.Action, cmd.DeviceID, err)
		return Ack{}, &DeliveryError{CommandID: cmd.ID, Action: cmd.Action, DeviceID: cmd.DeviceID, Err: err}
	}
	return Ack{
		Status:    "ok",
		CommandID: cmd.ID,
		Action:    string(cmd.Action),
		DeviceID:  cmd.DeviceID,
		IssuedAt:  cmd.IssuedAt,
	}, nil
}

func (u UseCase) deliver(ctx context.Context, cmd relay.DisplayCommand) error {
	if u.Transport == nil {
		return errors.New("device transport not configured")
	}
	if u.Limiter != nil {
		if err := u.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("pacing: %w", err)
		}
	}
	return u.Transport.Deliver(ctx, cmd)
}
