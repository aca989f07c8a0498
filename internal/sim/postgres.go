package sim

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const monitorColumns = `id, name, tag, status, cron, category_name, monitor_type, type_data, created_at, updated_at`

// PostgresStore implements Store backed by PostgreSQL. The schema ships as
// schema.sql next to this file.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL using the supplied connection string.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection on startup.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases database resources.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) ListMonitors(ctx context.Context, tag string) ([]MonitorRecord, error) {
	const query = `
SELECT ` + monitorColumns + `
  FROM monitors
 WHERE $1 = '' OR tag = $1
 ORDER BY created_at, id;
`
	rows, err := p.pool.Query(ctx, query, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var monitors []MonitorRecord
	for rows.Next() {
		rec, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, rec)
	}
	return monitors, rows.Err()
}

func (p *PostgresStore) GetMonitor(ctx context.Context, id string) (MonitorRecord, error) {
	const query = `
SELECT ` + monitorColumns + `
  FROM monitors
 WHERE id = $1;
`
	rec, err := scanMonitor(p.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return MonitorRecord{}, ErrMonitorNotFound
	}
	return rec, err
}

func (p *PostgresStore) CreateMonitor(ctx context.Context, input MonitorInput) (MonitorRecord, error) {
	if err := validateInput(input); err != nil {
		return MonitorRecord{}, err
	}

	const insert = `
INSERT INTO monitors (id, name, tag, status, cron, category_name, monitor_type, type_data)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + monitorColumns + `;
`
	return scanMonitor(p.pool.QueryRow(ctx, insert,
		uuid.NewString(),
		input.Name,
		input.Tag,
		input.Status,
		input.Cron,
		input.CategoryName,
		input.MonitorType,
		input.TypeData,
	))
}

func (p *PostgresStore) UpdateMonitor(ctx context.Context, id string, input MonitorInput) (MonitorRecord, error) {
	if err := validateInput(input); err != nil {
		return MonitorRecord{}, err
	}

	const update = `
UPDATE monitors
   SET name = $2, tag = $3, status = $4, cron = $5, category_name = $6,
       monitor_type = $7, type_data = $8, updated_at = NOW()
 WHERE id = $1
RETURNING ` + monitorColumns + `;
`
	rec, err := scanMonitor(p.pool.QueryRow(ctx, update,
		id,
		input.Name,
		input.Tag,
		input.Status,
		input.Cron,
		input.CategoryName,
		input.MonitorType,
		input.TypeData,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return MonitorRecord{}, ErrMonitorNotFound
	}
	return rec, err
}

func (p *PostgresStore) DeleteMonitor(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM monitors WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMonitorNotFound
	}
	return nil
}

func scanMonitor(row pgx.Row) (MonitorRecord, error) {
	var rec MonitorRecord
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Tag,
		&rec.Status,
		&rec.Cron,
		&rec.CategoryName,
		&rec.MonitorType,
		&rec.TypeData,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return MonitorRecord{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

var _ Store = (*PostgresStore)(nil)
