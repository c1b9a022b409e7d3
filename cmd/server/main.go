package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"glassrelay/internal/adapter/device/push"
	httpadapter "glassrelay/internal/adapter/http"
	metricsadapter "glassrelay/internal/adapter/metrics"
	metricsinmem "glassrelay/internal/adapter/metrics/inmemory"
	metricsprom "glassrelay/internal/adapter/metrics/prom"
	gormrepo "glassrelay/internal/adapter/repo/gorm"
	"glassrelay/internal/adapter/repo/memory"
	"glassrelay/internal/adapter/schema"
	"glassrelay/internal/app/auth"
	"glassrelay/internal/app/display"
	"glassrelay/internal/app/history"
	"glassrelay/internal/app/ingest"
	"glassrelay/internal/app/poll"
	"glassrelay/internal/app/ports"
	"glassrelay/internal/app/sessions"
	"glassrelay/internal/app/status"
	"glassrelay/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	hlog.SetLevel(parseLevel(cfg.LogLevel))

	h, err := buildHandler(context.Background(), cfg)
	if err != nil {
		hlog.Fatalf("build relay: %v", err)
	}

	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	hlog.Infof("glassrelay listening on %s (capacity=%d, archive=%t, device_push=%t)",
		cfg.Addr, cfg.Capacity, cfg.ArchiveEnabled(), cfg.DevicePushURL != "")
	s.Spin()
}

func buildHandler(ctx context.Context, cfg config.Config) (httpadapter.Handler, error) {
	store := memory.NewStore(memory.Options{
		Capacity:       cfg.Capacity,
		SessionTimeout: cfg.SessionTimeout,
		SessionGrace:   cfg.SessionGrace,
	})
	eventLog := memory.NewEventLog(store)
	registry := memory.NewSessionRegistry(store)

	schemas, err := schema.NewRegistry()
	if err != nil {
		return httpadapter.Handler{}, err
	}

	kpi := metricsinmem.NewRecorder()
	recorders := metricsadapter.Fanout{kpi}
	var promHandler app.HandlerFunc
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := metricsprom.NewRecorder(reg)
		if err != nil {
			return httpadapter.Handler{}, fmt.Errorf("register metrics: %w", err)
		}
		recorders = append(recorders, prom)
		promHandler = adaptor.HertzHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	ingestUC := ingest.UseCase{
		TxManager: memory.NewTxManager(store),
		Log:       eventLog,
		Sessions:  registry,
		Schemas:   schemas,
		Metrics:   recorders,
	}
	historyUC := history.UseCase{Log: eventLog}
	if cfg.ArchiveEnabled() {
		archive, journal, tx, err := buildArchive(ctx, cfg)
		if err != nil {
			return httpadapter.Handler{}, err
		}
		ingestUC.Archive, ingestUC.Journal, ingestUC.ArchiveTx = archive, journal, tx
		historyUC.Archive = archive
	}

	displayUC := display.UseCase{
		Metrics: recorders,
		Timeout: cfg.DisplayTimeout,
	}
	if cfg.DisplayRate > 0 {
		displayUC.Limiter = rate.NewLimiter(rate.Limit(cfg.DisplayRate), cfg.DisplayBurst)
	}
	if cfg.DevicePushURL != "" {
		transport, err := push.New(push.Config{
			URL:     cfg.DevicePushURL,
			Token:   cfg.DevicePushToken,
			Scheme:  cfg.LaunchScheme,
			Timeout: cfg.DisplayTimeout,
		})
		if err != nil {
			return httpadapter.Handler{}, err
		}
		displayUC.Transport = transport
	} else {
		hlog.Warnf("no device push url configured; display commands will fail with 502")
	}

	authUC := auth.VerifyUseCase{Secret: cfg.WebhookSecret}
	if !authUC.Enabled() {
		hlog.Warnf("no webhook secret configured; /webhook accepts unauthenticated producers")
	}

	return httpadapter.Handler{
		AuthUC:   authUC,
		IngestUC: ingestUC,
		PollUC: poll.UseCase{
			Log:          eventLog,
			Metrics:      recorders,
			DefaultLimit: cfg.DefaultLimit,
			MaxLimit:     cfg.MaxLimit,
		},
		AwaitUC:    poll.AwaitUseCase{Awaiter: eventLog},
		DisplayUC:  displayUC,
		SessionsUC: sessions.UseCase{Registry: registry, Log: eventLog},
		HistoryUC:  historyUC,
		StatusUC: status.UseCase{
			Log:       eventLog,
			Sessions:  registry,
			Metrics:   kpi,
			StartedAt: time.Now(),
		},
		Metrics:     recorders,
		KPI:         kpi,
		Prometheus:  promHandler,
		CORSOrigins: cfg.CORSOrigins,
	}, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (ports.EventArchive, ports.SessionJournal, ports.TxManager, error) {
	db, err := gormrepo.Open(cfg.ArchiveDriver, cfg.ArchiveDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, fmt.Errorf("%w (set RELAY_MIGRATIONS_DIR to the db/migrations directory)", err)
		}
		return nil, nil, nil, err
	}
	bootID := uuid.NewString()
	hlog.Infof("event archive enabled: driver=%s boot_id=%s", cfg.ArchiveDriver, bootID)
	return gormrepo.NewEventArchiveRepo(db, bootID), gormrepo.NewSessionJournalRepo(db, bootID), gormrepo.NewTxManager(db), nil
}

func parseLevel(s string) hlog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
