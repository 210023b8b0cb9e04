package storage

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool         *pgxpool.Pool
	installation string
}

// NewPostgres stores values in the client_storage table, scoped to one installation name.
func NewPostgres(pool *pgxpool.Pool, installation string) Repository {
	return &postgresRepo{pool: pool, installation: installation}
}

func (r *postgresRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `
SELECT value
FROM client_storage
WHERE installation = $1 AND key = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, r.installation, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO client_storage (installation, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (installation, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, r.installation, key, value)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM client_storage WHERE installation = $1 AND key = $2`, r.installation, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
