package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"glassrelay/internal/app/auth"
	"glassrelay/internal/app/display"
	"glassrelay/internal/app/history"
	"glassrelay/internal/app/ingest"
	"glassrelay/internal/app/poll"
	"glassrelay/internal/app/ports"
	"glassrelay/internal/app/sessions"
	"glassrelay/internal/app/status"
	"glassrelay/internal/domain/relay"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	webhookSignatureHeader = "X-Webhook-Signature"
	webhookTokenHeader     = "X-Webhook-Token"
)

type Handler struct {
	AuthUC     auth.VerifyUseCase
	IngestUC   ingest.UseCase
	PollUC     poll.UseCase
	AwaitUC    poll.AwaitUseCase
	DisplayUC  display.UseCase
	SessionsUC sessions.UseCase
	HistoryUC  history.UseCase
	StatusUC   status.UseCase
	Metrics    ports.RelayMetrics
	KPI        kpiSnapshotProvider
	// Prometheus serves /metrics when set.
	Prometheus  app.HandlerFunc
	CORSOrigins []string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(h.accessLog(), corsMiddleware(h.CORSOrigins))

	s.GET("/", h.info)
	s.GET("/health", h.health)
	s.GET("/stats", h.stats)

	s.POST("/webhook", h.webhook)

	s.GET("/events", h.events)
	s.GET("/events/next", h.nextEvent)
	s.DELETE("/events", h.clearEvents)

	s.POST("/display", h.display)
	s.POST("/clear", h.clearDisplay)

	s.GET("/sessions", h.listSessions)
	s.GET("/sessions/:device_id", h.getSession)
	s.GET("/devices/:device_id/history", h.history)

	s.GET("/ops/kpi", h.kpi)
	if h.Prometheus != nil {
		s.GET("/metrics", h.Prometheus)
	}
}

type webhookRequest struct {
	Type      string      `json:"type"`
	Data      relay.Data  `json:"data"`
	DeviceID  string      `json:"device_id"`
	Timestamp relay.Value `json:"timestamp"`
}

type webhookResponse struct {
	Status  string `json:"status"`
	EventID uint64 `json:"event_id"`
}

type displayRequest struct {
	Text     string `json:"text"`
	DeviceID string `json:"device_id,omitempty"`
	// Duration is in seconds.
	Duration *float64 `json:"duration,omitempty"`
}

func (h Handler) webhook(c context.Context, ctx *app.RequestContext) {
	if err := h.AuthUC.Execute(c, auth.VerifyRequest{
		Body:      ctx.Request.Body(),
		Signature: string(ctx.GetHeader(webhookSignatureHeader)),
		Token:     webhookToken(ctx),
	}); err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordRejected()
		}
		writeError(c, ctx, err)
		return
	}

	var body webhookRequest
	if err := decodeJSON(ctx, &body); err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordRejected()
		}
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.IngestUC.Execute(c, ingest.Request{
		Type:      body.Type,
		Data:      body.Data,
		DeviceID:  body.DeviceID,
		Timestamp: body.Timestamp,
	})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, webhookResponse{Status: "ok", EventID: resp.EventID})
}

func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	since, err := queryUint(ctx, "since")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_since", err.Error())
		return
	}
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_limit", err.Error())
		return
	}

	resp, err := h.PollUC.Execute(c, poll.Request{Since: since, Limit: limit})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) nextEvent(c context.Context, ctx *app.RequestContext) {
	timeoutMS, err := queryInt(ctx, "timeout_ms")
	if err != nil || timeoutMS < 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_timeout", "timeout_ms must be a non-negative integer")
		return
	}
	resp, err := h.AwaitUC.Execute(c, poll.AwaitRequest{
		DeviceID: string(ctx.Query("device_id")),
		Type:     string(ctx.Query("type")),
		Timeout:  time.Duration(timeoutMS) * time.Millisecond,
	})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) clearEvents(c context.Context, ctx *app.RequestContext) {
	resp, err := h.PollUC.Clear(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	hlog.CtxInfof(c, "event log cleared: dropped=%d high_water=%d", resp.Cleared, resp.HighWater)
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) display(c context.Context, ctx *app.RequestContext) {
	var body displayRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	req := display.Request{Text: body.Text, DeviceID: body.DeviceID}
	if body.Duration != nil {
		req.Duration = time.Duration(*body.Duration * float64(time.Second))
	}

	ack, err := h.DisplayUC.Display(c, req)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, ack)
}

func (h Handler) clearDisplay(c context.Context, ctx *app.RequestContext) {
	var body displayRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	ack, err := h.DisplayUC.Clear(c, display.Request{DeviceID: body.DeviceID})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, ack)
}

func (h Handler) listSessions(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SessionsUC.List(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) getSession(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SessionsUC.Get(c, ctx.Param("device_id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) history(c context.Context, ctx *app.RequestContext) {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_limit", err.Error())
		return
	}
	occurredFrom, err := queryUnix(ctx, "occurred_from")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_occurred_from", err.Error())
		return
	}
	occurredTo, err := queryUnix(ctx, "occurred_to")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_occurred_to", err.Error())
		return
	}
	resp, err := h.HistoryUC.Execute(c, history.Request{
		DeviceID:     ctx.Param("device_id"),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
		Type:         string(ctx.Query("type")),
	})
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) info(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Info(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) health(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Health(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) stats(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Stats(c)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func webhookToken(ctx *app.RequestContext) string {
	if v := strings.TrimSpace(string(ctx.GetHeader(webhookTokenHeader))); v != "" {
		return v
	}
	authz := strings.TrimSpace(string(ctx.GetHeader("Authorization")))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func queryUint(ctx *app.RequestContext, key string) (uint64, error) {
	raw := strings.TrimSpace(string(ctx.Query(key)))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func queryUnix(ctx *app.RequestContext, key string) (int64, error) {
	n, err := queryUint(ctx, key)
	if err != nil || n > math.MaxInt64 {
		return 0, fmt.Errorf("%s must be unix seconds", key)
	}
	return int64(n), nil
}

func queryInt(ctx *app.RequestContext, key string) (int, error) {
	raw := strings.TrimSpace(string(ctx.Query(key)))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func writeError(c context.Context, ctx *app.RequestContext, err error) {
	var validationErr *ingest.ValidationError
	var deliveryErr *display.DeliveryError
	switch {
	case errors.Is(err, auth.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_webhook_credentials", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_webhook_credentials", err.Error())
	case errors.As(err, &validationErr):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_event", err.Error())
	case errors.As(err, &deliveryErr):
		writeErrorBody(ctx, consts.StatusBadGateway, "delivery_failed", err.Error())
	case errors.Is(err, poll.ErrInvalidRequest),
		errors.Is(err, display.ErrInvalidRequest),
		errors.Is(err, sessions.ErrInvalidRequest),
		errors.Is(err, history.ErrInvalidRequest),
		errors.Is(err, ports.ErrValidation):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrDelivery):
		writeErrorBody(ctx, consts.StatusBadGateway, "delivery_failed", err.Error())
	case errors.Is(err, ports.ErrTimeout):
		writeErrorBody(ctx, consts.StatusRequestTimeout, "timeout", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrCapacity):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "capacity_exceeded", err.Error())
	default:
		hlog.CtxErrorf(c, "unhandled error on %s %s: %v", ctx.Method(), ctx.Path(), err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
