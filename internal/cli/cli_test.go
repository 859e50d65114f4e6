package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/payment"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/repository/slot"
	"storefront/internal/seed"
	checkoutsvc "storefront/internal/service/checkout"
)

// memoryOpener shares one backend and gateway across invocations the way the
// sqlite file does between processes.
func memoryOpener() Opener {
	backend := slot.NewMemory()
	products := productrepo.NewMemory(seed.Catalog()...)
	svc := checkoutsvc.New(payment.NewFake())
	return func(*RootOptions) (*Env, error) {
		return &Env{
			Slots:    backend,
			Products: products,
			Checkout: svc,
			Close:    func() error { return nil },
		}, nil
	}
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var billingArgs = []string{
	"--first-name", "Kari", "--last-name", "Nordmann",
	"--street", "Storgata 1", "--postal-code", "0155", "--city", "Oslo",
	"--phone", "+47 912 34 567", "--email", "kari@example.no",
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)

	for _, name := range []string{"products", "add", "cart", "checkout", "receipt"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	sessionFlag := cmd.PersistentFlags().Lookup("session")
	require.NotNil(t, sessionFlag)
	assert.Equal(t, DefaultSession, sessionFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, memoryOpener(), "--format", "xml", "products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestProducts(t *testing.T) {
	out, err := run(t, memoryOpener(), "products")
	require.NoError(t, err)
	assert.Contains(t, out, "click-and-go-taxi-lamp  Click & Go")
	assert.Contains(t, out, "3480.00 NOK")
	assert.Contains(t, out, "2500.00 NOK")
}

func TestCart_AddRemoveClear(t *testing.T) {
	open := memoryOpener()

	out, err := run(t, open, "add", "click-and-go-taxi-lamp", "complete")
	require.NoError(t, err)
	assert.Contains(t, out, "Click & Go - Complete lamp")
	assert.Contains(t, out, "Total:    3690.00")

	out, err = run(t, open, "add", "spare-bulb", "-q", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2. Spare LED bulb - Single  2 x 150.00 = 300.00")

	out, err = run(t, open, "--format", "json", "cart")
	require.NoError(t, err)
	var view struct {
		Items      []json.RawMessage `json:"items"`
		TotalCents int64             `json:"totalCents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Items, 2)
	assert.Equal(t, int64(348000+30000+21000), view.TotalCents)

	_, err = run(t, open, "cart", "remove", "5")
	require.Error(t, err)

	out, err = run(t, open, "cart", "remove", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Complete lamp")

	out, err = run(t, open, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")
	assert.Contains(t, out, "Total:    210.00")
}

func TestAdd_UnknownProduct(t *testing.T) {
	_, err := run(t, memoryOpener(), "add", "no-such-product")
	require.Error(t, err)
}

func TestCheckout_EmptyCart(t *testing.T) {
	_, err := run(t, memoryOpener(), "checkout", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestCheckout_CardFlow(t *testing.T) {
	open := memoryOpener()

	_, err := run(t, open, "add", "click-and-go-taxi-lamp", "complete")
	require.NoError(t, err)

	_, err = run(t, open, "checkout", "pay", "--accept-terms", "--token", "pm_card_visa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current checkout step")

	_, err = run(t, open, "checkout", "shipping", "--first-name", "Kari")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing.email")

	out, err := run(t, open, append([]string{"checkout", "shipping"}, billingArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Step: payment")

	_, err = run(t, open, "checkout", "pay", "--token", "pm_card_visa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--accept-terms")

	_, err = run(t, open, "checkout", "pay", "--accept-terms", "--token", payment.DeclinedCardToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment failed")

	out, err = run(t, open, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Complete lamp")

	out, err = run(t, open, "checkout", "pay", "--accept-terms", "--token", "pm_card_visa")
	require.NoError(t, err)
	assert.Contains(t, out, "placed")
	assert.Contains(t, out, "Payment: Card")

	out, err = run(t, open, "receipt")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 3690.00 NOK")
	assert.Contains(t, out, "incl. VAT: 615.00 NOK")

	out, err = run(t, open, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")
}

func TestCheckout_InvoiceToSeparateAddress(t *testing.T) {
	open := memoryOpener()

	_, err := run(t, open, "add", "mounting-kit")
	require.NoError(t, err)

	args := append([]string{"checkout", "shipping"}, billingArgs...)
	args = append(args,
		"--ship-to-different",
		"--ship-first-name", "Ola", "--ship-last-name", "Nordmann",
		"--ship-street", "Fjordveien 2", "--ship-postal-code", "5003", "--ship-city", "Bergen",
	)
	out, err := run(t, open, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Ship to: Ola Nordmann, Fjordveien 2, 5003 Bergen")

	out, err = run(t, open, "checkout", "pay", "--method", "invoice", "--accept-terms")
	require.NoError(t, err)
	assert.Contains(t, out, "The invoice is sent separately by email.")
	assert.Contains(t, out, "5003 Bergen")
}

func TestSessionsAreIsolated(t *testing.T) {
	open := memoryOpener()

	_, err := run(t, open, "--session", "a", "add", "spare-bulb")
	require.NoError(t, err)

	out, err := run(t, open, "--session", "b", "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is empty")
}

func TestReceipt_NoOrder(t *testing.T) {
	_, err := run(t, memoryOpener(), "receipt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no order")
}

func TestOpenSQLite(t *testing.T) {
	open := Opener(OpenSQLite)
	db := t.TempDir() + "/cli.db"

	_, err := run(t, open, "--db", db, "add", "spare-bulb")
	require.NoError(t, err)

	out, err := run(t, open, "--db", db, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Spare LED bulb - Single")
}
