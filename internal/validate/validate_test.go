package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func validBilling() domain.Address {
	return domain.Address{
		FirstName:     "Kari",
		LastName:      "Nordmann",
		StreetAddress: "Storgata 1",
		PostalCode:    "0155",
		PostalAddress: "Oslo",
		Phone:         "+47 912 34 567",
		Email:         "kari@example.no",
	}
}

func TestField(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
		ok    bool
	}{
		{"email ok", Email, "a@b.no", true},
		{"email missing tld", Email, "a@b", false},
		{"email with space", Email, "a b@c.no", false},
		{"empty email", Email, "  ", false},
		{"phone with plus and spaces", Phone, "+47 912 34 567", true},
		{"phone with hyphens", Phone, "912-34-567-00", true},
		{"phone too short", Phone, "912 34 567", false},
		{"phone letters", Phone, "91234567ab", false},
		{"postcode 4 digits", PostalCode, "0155", true},
		{"postcode 3 digits", PostalCode, "015", false},
		{"postcode letters", PostalCode, "01A5", false},
		{"short name", FirstName, "Al", false},
		{"name trimmed", FirstName, "  Ola ", true},
		{"street any", StreetAddress, "x", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := Field(tc.field, tc.value)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestField_BlankRequiredValueGetsFieldMessage(t *testing.T) {
	for _, field := range []string{FirstName, PostalCode, Email, StreetAddress, OrganizationNumber} {
		t.Run(field, func(t *testing.T) {
			msg, ok := Field(field, " \t ")
			assert.False(t, ok)
			assert.Equal(t, requiredMessage(field), msg)
		})
	}
}

func TestField_FormatMessageFollowsRequired(t *testing.T) {
	msg, ok := Field(PostalCode, "12")
	assert.False(t, ok)
	assert.Equal(t, formatMessages["postcode"], msg)

	msg, ok = Field(OrganizationNumber, "912345678")
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestAddress_EmptyEmailIsRejected(t *testing.T) {
	addr := validBilling()
	addr.Email = ""

	errs := Address("billing", addr, BillingRequired)

	require.Len(t, errs, 1)
	assert.Contains(t, errs, "billing.email")
}

func TestAddress_ShippingDoesNotNeedContactFields(t *testing.T) {
	addr := validBilling()
	addr.Phone = ""
	addr.Email = ""

	assert.Empty(t, Address("shipping", addr, ShippingRequired))
}

func TestAddress_OptionalFieldsStillCheckedWhenFilled(t *testing.T) {
	addr := validBilling()
	addr.Email = "not-an-email"

	errs := Address("shipping", addr, ShippingRequired)

	assert.Equal(t, map[string]string{"shipping.email": formatMessages["simpleemail"]}, errs)
}

func TestForm_MissingRequiredKeys(t *testing.T) {
	errs := Form(map[string]string{FirstName: "Kari"}, []string{FirstName, LastName})

	assert.Equal(t, map[string]string{LastName: messages[LastName]}, errs)
}

func TestForm_OrganizationNumberIsFreeForm(t *testing.T) {
	errs := Form(map[string]string{OrganizationNumber: "anything"}, nil)

	assert.Empty(t, errs)
}

func TestForm_Idempotent(t *testing.T) {
	data := map[string]string{FirstName: "A", Email: "bad", PostalCode: "12"}

	first := Form(data, BillingRequired)
	second := Form(data, BillingRequired)

	assert.Equal(t, first, second)
	assert.Len(t, first, 7)
}

func TestNormalize(t *testing.T) {
	got := Normalize(domain.Address{FirstName: " Kari ", Email: "k@x.no\n"})

	assert.Equal(t, "Kari", got.FirstName)
	assert.Equal(t, "k@x.no", got.Email)

	decomposed := Normalize(domain.Address{PostalAddress: "Tromso\u0308"})
	assert.Equal(t, "Troms\u00f6", decomposed.PostalAddress)
}
