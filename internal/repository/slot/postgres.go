package slot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Backend {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, scope, key string) ([]byte, error) {
	const q = `
SELECT value
FROM slots
WHERE scope = $1 AND key = $2
`
	var value []byte
	if err := r.pool.QueryRow(ctx, q, scope, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, scope, key string, value []byte) error {
	const q = `
INSERT INTO slots (scope, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (scope, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, scope, key, value)
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, scope, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE scope = $1 AND key = $2`, scope, key)
	return err
}
