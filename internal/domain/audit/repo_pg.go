package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shifa-health/shifa/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *repoPG) Record(ctx context.Context, e *Event) error {
	e.ID = uuid.New()
	var detail []byte
	if e.Detail != nil {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			return err
		}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_events (id, action, actor_id, entity_type, entity_id, detail)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Action, e.ActorID, e.EntityType, e.EntityID, detail)
	return err
}

func (r *repoPG) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Event, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_events WHERE entity_type = $1 AND entity_id = $2`,
		entityType, entityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, action, actor_id, entity_type, entity_id, detail, recorded_at
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY recorded_at DESC LIMIT $3 OFFSET $4`,
		entityType, entityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Event
	for rows.Next() {
		var e Event
		var detail []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.EntityType, &e.EntityID, &detail, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, 0, err
			}
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
