package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const configColumns = `id, name, description, weights, is_active, created_at, updated_at`

func (s *PostgresStore) ListConfigs(ctx context.Context) ([]*SortingConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+configColumns+`
		FROM sorting_configs
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*SortingConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (s *PostgresStore) GetConfig(ctx context.Context, id uuid.UUID) (*SortingConfig, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM sorting_configs WHERE id = $1`, id)
	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *PostgresStore) CreateConfig(ctx context.Context, cfg *SortingConfig) error {
	weightsJSON, err := json.Marshal(cfg.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO sorting_configs (name, description, weights, is_active)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at, updated_at`,
		cfg.Name, cfg.Description, weightsJSON,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", ErrNameTaken, cfg.Name)
	}
	if err != nil {
		return err
	}
	cfg.IsActive = false
	cfg.IsDefault = false
	return nil
}

func (s *PostgresStore) SetActiveConfig(ctx context.Context, id *uuid.UUID) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialize transitions across instances; plain reads are not blocked.
	if _, err := tx.Exec(ctx, `LOCK TABLE sorting_configs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("lock configs: %w", err)
	}

	if id != nil {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sorting_configs WHERE id = $1)`, *id).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("lookup config: %w", err)
		}
		if !exists {
			return false, nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE sorting_configs SET is_active = false, updated_at = NOW()
			WHERE is_active AND id <> $1`, *id)
		if err != nil {
			return false, fmt.Errorf("deactivate configs: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE sorting_configs SET is_active = true, updated_at = NOW()
			WHERE id = $1 AND NOT is_active`, *id)
		if err != nil {
			return false, fmt.Errorf("activate config: %w", err)
		}
	} else {
		_, err := tx.Exec(ctx, `
			UPDATE sorting_configs SET is_active = false, updated_at = NOW()
			WHERE is_active`)
		if err != nil {
			return false, fmt.Errorf("deactivate configs: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) DeleteConfig(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sorting_configs WHERE id = $1 AND NOT is_active`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanConfig(row pgx.Row) (*SortingConfig, error) {
	cfg := &SortingConfig{}
	var description sql.NullString
	var weightsJSON []byte
	if err := row.Scan(
		&cfg.ID, &cfg.Name, &description, &weightsJSON, &cfg.IsActive,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		cfg.Description = description.String
	}
	if err := json.Unmarshal(weightsJSON, &cfg.Weights); err != nil {
		return nil, fmt.Errorf("decode weights for config %s: %w", cfg.ID, err)
	}
	return cfg, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
