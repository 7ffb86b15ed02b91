package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/postgres"
)

type webhookEventRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewWebhookEventRepository(db *postgres.DB, logger *logger.Logger) webhookevent.Repository {
	return &webhookEventRepository{db: db, logger: logger}
}

const webhookEventColumns = `
	id, tenant_id, transmission_id, event_type, payload,
	processed, error_message, received_at, processed_at
`

func (r *webhookEventRepository) Create(ctx context.Context, event *webhookevent.WebhookEvent) error {
	query := `
	INSERT INTO webhook_events (` + webhookEventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.TransmissionID,
		event.EventType,
		event.Payload,
		event.Processed,
		event.ErrorMessage,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	return mapDBError(err, "webhook event")
}

func (r *webhookEventRepository) Get(ctx context.Context, id string) (*webhookevent.WebhookEvent, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE id = $1`

	return r.scanEvent(r.db.GetQuerier(ctx).QueryRowContext(ctx, query, id))
}

func (r *webhookEventRepository) Update(ctx context.Context, event *webhookevent.WebhookEvent) error {
	query := `
	UPDATE webhook_events SET
		processed = $2,
		error_message = $3,
		processed_at = $4
	WHERE id = $1
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		event.ID,
		event.Processed,
		event.ErrorMessage,
		event.ProcessedAt,
	)
	return mapDBError(err, "webhook event")
}

func (r *webhookEventRepository) List(ctx context.Context, filter *webhookevent.Filter) ([]*webhookevent.WebhookEvent, error) {
	if filter == nil {
		filter = &webhookevent.Filter{}
	}

	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE 1=1`
	args := []interface{}{}

	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if filter.Processed != nil {
		args = append(args, *filter.Processed)
		query += fmt.Sprintf(" AND processed = $%d", len(args))
	}
	if filter.FailedOnly {
		query += " AND processed = false AND error_message IS NOT NULL"
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += fmt.Sprintf(" AND received_at >= $%d", len(args))
	}

	query += " ORDER BY received_at DESC"
	query += fmt.Sprintf(" LIMIT %d OFFSET %d",
		filter.GetLimit(), filter.GetOffset())

	rows, err := r.db.GetQuerier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "webhook event")
	}
	defer rows.Close()

	var events []*webhookevent.WebhookEvent
	for rows.Next() {
		e, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "webhook event")
	}
	return events, nil
}

func (r *webhookEventRepository) CountFailuresSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM webhook_events
	WHERE tenant_id = $1
	  AND received_at >= $2
	  AND processed = false
	  AND error_message IS NOT NULL
	`

	var count int
	err := r.db.GetQuerier(ctx).QueryRowContext(ctx, query, tenantID, since).Scan(&count)
	if err != nil {
		return 0, mapDBError(err, "webhook event")
	}
	return count, nil
}

func (r *webhookEventRepository) Stats(ctx context.Context, tenantID string) (*webhookevent.Stats, error) {
	query := `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE processed),
		COUNT(*) FILTER (WHERE NOT processed AND error_message IS NOT NULL),
		COUNT(*) FILTER (WHERE NOT processed AND error_message IS NULL)
	FROM webhook_events
	WHERE tenant_id = $1
	`

	var stats webhookevent.Stats
	err := r.db.GetQuerier(ctx).QueryRowContext(ctx, query, tenantID).Scan(
		&stats.Total,
		&stats.Processed,
		&stats.Failed,
		&stats.Pending,
	)
	if err != nil {
		return nil, mapDBError(err, "webhook event")
	}
	return &stats, nil
}

func (r *webhookEventRepository) scanEvent(row rowScanner) (*webhookevent.WebhookEvent, error) {
	var e webhookevent.WebhookEvent
	err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.TransmissionID,
		&e.EventType,
		&e.Payload,
		&e.Processed,
		&e.ErrorMessage,
		&e.ReceivedAt,
		&e.ProcessedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "webhook event")
	}
	return &e, nil
}
