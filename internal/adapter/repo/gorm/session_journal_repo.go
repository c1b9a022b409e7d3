package gormrepo

import (
	"context"
	"time"

	"glassrelay/internal/adapter/repo/gorm/model"
	"glassrelay/internal/domain/relay"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	journalStatusActive = "active"
	journalStatusClosed = "closed"
)

type SessionJournalRepo struct {
	db     *gorm.DB
	bootID string
}

func NewSessionJournalRepo(db *gorm.DB, bootID string) SessionJournalRepo {
	return SessionJournalRepo{db: db, bootID: bootID}
}

// Opened closes any row still open for the device before starting a new
// one, so each device has at most one active row.
func (r SessionJournalRepo) Opened(ctx context.Context, session relay.Session) error {
	db := getDBFromCtx(ctx, r.db).WithContext(ctx)
	started := session.ActivatedAt
	if started.IsZero() {
		started = session.LastSeenAt
	}
	if err := r.closeOpen(db, session.DeviceID, started); err != nil {
		return err
	}
	m := model.DeviceSession{
		SessionID:     uuid.NewString(),
		BootID:        r.bootID,
		DeviceID:      session.DeviceID,
		Status:        journalStatusActive,
		LastEventType: string(session.LastEventType),
		StartedAt:     started.UTC(),
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

func (r SessionJournalRepo) Closed(ctx context.Context, deviceID string, endedAt time.Time) error {
	return r.closeOpen(getDBFromCtx(ctx, r.db).WithContext(ctx), deviceID, endedAt)
}

func (r SessionJournalRepo) closeOpen(db *gorm.DB, deviceID string, endedAt time.Time) error {
	updates := map[string]any{
		"status":   journalStatusClosed,
		"ended_at": endedAt.UTC(),
	}
	return db.Model(&model.DeviceSession{}).
		Where(&model.DeviceSession{DeviceID: deviceID, Status: journalStatusActive}).
		Updates(updates).Error
}

