package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"glassrelay/internal/adapter/device/launchurl"
	"glassrelay/internal/domain/relay"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const DefaultTimeout = 5 * time.Second

var ErrUnexpectedStatus = errors.New("unexpected device platform status")

type Config struct {
	URL     string
	Token   string
	Scheme  string
	Timeout time.Duration
}

// Transport posts display commands to the glasses platform endpoint.
type Transport struct {
	cfg    Config
	client *client.Client
}

type pushBody struct {
	CommandID  string `json:"command_id"`
	Action     string `json:"action"`
	DeviceID   string `json:"device_id,omitempty"`
	Text       string `json:"text,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	CommandURL string `json:"command_url"`
	IssuedAt   string `json:"issued_at"`
}

func New(cfg Config) (*Transport, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("device push url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c, err := client.NewClient(client.WithDialTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("create device push client: %w", err)
	}
	return &Transport{cfg: cfg, client: c}, nil
}

func (t *Transport) Deliver(ctx context.Context, cmd relay.DisplayCommand) error {
	timeout := t.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		remaining := time.Until(dl)
		if remaining <= 0 {
			return ctx.Err()
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	body, err := json.Marshal(pushBody{
		CommandID:  cmd.ID,
		Action:     string(cmd.Action),
		DeviceID:   cmd.DeviceID,
		Text:       cmd.Text,
		DurationMS: cmd.Duration.Milliseconds(),
		CommandURL: launchurl.Build(t.cfg.Scheme, cmd),
		IssuedAt:   cmd.IssuedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(t.cfg.URL)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	if t.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.cfg.Token)
	}
	req.SetBody(body)

	if err := t.client.DoTimeout(ctx, req, resp, timeout); err != nil {
		return fmt.Errorf("push %s: %w", cmd.Action, err)
	}
	if code := resp.StatusCode(); code < consts.StatusOK || code >= consts.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
	return nil
}
