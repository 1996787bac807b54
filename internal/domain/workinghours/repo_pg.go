package workinghours

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shifa-health/shifa/internal/domain/directory"
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

const whCols = `id, entity_type, entity_id, day_of_week, is_working_day,
	opening_time, closing_time, break_start_time, break_end_time, created_at, updated_at`

func (r *repoPG) GetForEntity(ctx context.Context, et directory.EntityType, id uuid.UUID) ([]StoredEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+whCols+` FROM working_hours
		WHERE entity_type = $1 AND entity_id = $2`, et, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StoredEntry
	for rows.Next() {
		var e StoredEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.DayOfWeek, &e.IsWorkingDay,
			&e.OpeningTime, &e.ClosingTime, &e.BreakStartTime, &e.BreakEndTime,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DayOfWeek.Order() < items[j].DayOfWeek.Order()
	})
	return items, nil
}

func (r *repoPG) ReplaceForEntity(ctx context.Context, et directory.EntityType, id uuid.UUID, schedule []ScheduleEntry) ([]StoredEntry, error) {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM working_hours WHERE entity_type = $1 AND entity_id = $2`, et, id); err != nil {
		return nil, err
	}
	for _, e := range schedule {
		if _, err := c.Exec(ctx, `
			INSERT INTO working_hours (id, entity_type, entity_id, day_of_week, is_working_day,
				opening_time, closing_time, break_start_time, break_end_time)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			uuid.New(), et, id, e.DayOfWeek, e.IsWorkingDay,
			e.OpeningTime, e.ClosingTime, e.BreakStartTime, e.BreakEndTime); err != nil {
			return nil, err
		}
	}
	return r.GetForEntity(ctx, et, id)
}
