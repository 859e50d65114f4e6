//go:build integration

package slot

import (
	"context"
	"testing"

	"storefront/internal/dbtest"
)

func TestPostgres_Backend(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	exerciseBackend(t, NewPostgres(pool))
}
