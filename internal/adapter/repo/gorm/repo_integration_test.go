package gormrepo

import (
	"context"
	"os"
	"testing"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"

	"github.com/google/uuid"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("GLASSRELAY_DB_DSN")
	if dsn == "" {
		t.Skip("GLASSRELAY_DB_DSN is required for integration test")
	}
	return dsn
}

func TestPostgresArchive_RoundTrip(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	bootID := uuid.NewString()
	deviceID := "it-" + bootID
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM relay_events WHERE boot_id = ?", bootID).Error
		_ = db.Exec("DELETE FROM device_sessions WHERE boot_id = ?", bootID).Error
	})

	archive := NewEventArchiveRepo(db, bootID)
	journal := NewSessionJournalRepo(db, bootID)
	at := time.Now().UTC().Truncate(time.Millisecond)

	err = NewTxManager(db).RunInTx(ctx, func(ctx context.Context) error {
		evt := relay.Event{Sequence: 1, Type: relay.EventAppActivated, Data: relay.Data{}, DeviceID: deviceID, Timestamp: at, ReceivedAt: at}
		if err := archive.Append(ctx, []relay.Event{evt}); err != nil {
			return err
		}
		return journal.Opened(ctx, relay.Session{DeviceID: deviceID, Active: true, ActivatedAt: at, LastEventType: relay.EventAppActivated})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, err := archive.ListByDevice(ctx, ports.DeviceQuery{DeviceID: deviceID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Type != relay.EventAppActivated {
		t.Fatalf("unexpected archive rows: %+v", got)
	}
	if err := journal.Closed(ctx, deviceID, at.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}
}
