package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"glassrelay/internal/adapter/repo/gorm/model"
	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventArchiveRepo mirrors ingested events into relay_events. Sequence
// numbers restart with every process, so rows are keyed by boot id too.
type EventArchiveRepo struct {
	db     *gorm.DB
	bootID string
}

func NewEventArchiveRepo(db *gorm.DB, bootID string) EventArchiveRepo {
	return EventArchiveRepo{db: db, bootID: bootID}
}

func (r EventArchiveRepo) Append(ctx context.Context, events []relay.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.RelayEvent, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encode payload %d: %w", e.Sequence, err)
		}
		rows = append(rows, model.RelayEvent{
			BootID:     r.bootID,
			Sequence:   int64(e.Sequence),
			DeviceID:   e.DeviceID,
			Type:       string(e.Type),
			Payload:    string(b),
			OccurredAt: e.Timestamp.UTC(),
			ReceivedAt: e.ReceivedAt.UTC(),
		})
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// ListByDevice returns the newest archived events matching q across all
// boots, oldest first.
func (r EventArchiveRepo) ListByDevice(ctx context.Context, q ports.DeviceQuery) ([]relay.Event, error) {
	rows := []model.RelayEvent{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.RelayEvent{DeviceID: q.DeviceID, Type: string(q.Type)})
	if !q.From.IsZero() {
		query = query.Where("occurred_at >= ?", q.From.UTC())
	}
	if !q.To.IsZero() {
		query = query.Where("occurred_at <= ?", q.To.UTC())
	}
	query = query.Clauses(clause.OrderBy{
		Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "received_at"}, Desc: true},
			{Column: clause.Column{Name: "sequence"}, Desc: true},
		},
	})
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]relay.Event, len(rows))
	for i, row := range rows {
		var data relay.Data
		if row.Payload != "" {
			if err := json.Unmarshal([]byte(row.Payload), &data); err != nil {
				return nil, fmt.Errorf("decode payload %s/%d: %w", row.BootID, row.Sequence, err)
			}
		}
		if data == nil {
			data = relay.Data{}
		}
		out[len(rows)-1-i] = relay.Event{
			Sequence:   uint64(row.Sequence),
			Type:       relay.EventType(row.Type),
			Data:       data,
			DeviceID:   row.DeviceID,
			Timestamp:  row.OccurredAt,
			ReceivedAt: row.ReceivedAt,
		}
	}
	return out, nil
}
