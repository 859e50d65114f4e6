package slot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	lite, err := OpenSQLite(filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })
	return map[string]Backend{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestBackends(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			exerciseBackend(t, b)
		})
	}
}

func exerciseBackend(t *testing.T, b Backend) {
	ctx := context.Background()

	_, err := b.Get(ctx, "s1", KeyCart)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	require.NoError(t, b.Set(ctx, "s1", KeyCart, []byte(`[1]`)))
	require.NoError(t, b.Set(ctx, "s1", KeyCart, []byte(`[2]`)))
	got, err := b.Get(ctx, "s1", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	_, err = b.Get(ctx, "s2", KeyCart)
	assert.ErrorIs(t, err, domain.ErrNotFound, "scopes must not leak")

	require.NoError(t, b.Remove(ctx, "s1", KeyCart))
	require.NoError(t, b.Remove(ctx, "s1", KeyCart))
	_, err = b.Get(ctx, "s1", KeyCart)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "s", "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "s", "k")
	require.NoError(t, err)
	got[1] = 'y'

	again, _ := m.Get(ctx, "s", "k")
	assert.Equal(t, "abc", string(again))
}

func TestGetJSON_MalformedIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := Bind(NewMemory(), "sess")
	require.NoError(t, s.Set(ctx, KeyLastOrder, []byte("{not json")))

	var order domain.Order
	ok, err := GetJSON(ctx, s, KeyLastOrder, &order)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = GetJSON(ctx, s, KeyCart, &order)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := Bind(NewMemory(), "sess")
	require.NoError(t, SetJSON(ctx, s, KeyHideShippingDisclaimer, true))

	var hide bool
	ok, err := GetJSON(ctx, s, KeyHideShippingDisclaimer, &hide)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, hide)
}

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Set(context.Context, string, string, []byte) error  { return f.err }
func (f failingBackend) Remove(context.Context, string, string) error       { return f.err }

func TestGetJSON_BackendErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	var v any
	_, err := GetJSON(context.Background(), Bind(failingBackend{err: boom}, "s"), KeyCart, &v)
	assert.ErrorIs(t, err, boom)
}
