package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_CardFlow(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	in, err := f.CreateIntent(ctx, 369000, "NOK")
	require.NoError(t, err)
	assert.Equal(t, int64(369000), in.AmountCents)
	assert.Equal(t, "nok", in.Currency)

	token, err := f.TokenizeCard(ctx, "pm_card_visa")
	require.NoError(t, err)

	conf, err := f.ConfirmPayment(ctx, in.ClientSecret, token)
	require.NoError(t, err)
	assert.Equal(t, in.ID, conf.IntentID)
	assert.Equal(t, "succeeded", conf.Status)

	_, err = f.ConfirmPayment(ctx, in.ClientSecret, token)
	assert.Error(t, err, "an intent is charged once")
}

func TestFake_DeclineThenRetry(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	in, err := f.CreateIntent(ctx, 1000, "nok")
	require.NoError(t, err)

	_, err = f.ConfirmPayment(ctx, in.ClientSecret, DeclinedCardToken)
	assert.ErrorIs(t, err, ErrDeclined)

	_, err = f.ConfirmPayment(ctx, in.ClientSecret, "pm_card_visa")
	assert.NoError(t, err)
}

func TestFake_Rejects(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	_, err := f.CreateIntent(ctx, 0, "nok")
	assert.Error(t, err)

	_, err = f.TokenizeCard(ctx, "4242424242424242")
	assert.Error(t, err)

	_, err = f.ConfirmPayment(ctx, "garbage", "pm_card_visa")
	assert.Error(t, err)

	_, err = f.ConfirmPayment(ctx, "pi_other_secret_9", "pm_card_visa")
	assert.ErrorIs(t, err, ErrUnknownIntent)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.CreateIntent(cancelled, 100, "nok")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIntentIDFromSecret(t *testing.T) {
	id, ok := IntentIDFromSecret("pi_123_secret_abc")
	assert.True(t, ok)
	assert.Equal(t, "pi_123", id)

	_, ok = IntentIDFromSecret("pi_123")
	assert.False(t, ok)
}
