// Package validate implements the checkout form rules on top of
// go-playground/validator. Values are trimmed before any rule runs.
package validate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"storefront/internal/domain"
)

// Field names as submitted by the checkout form.
const (
	FirstName          = "firstName"
	LastName           = "lastName"
	OrganizationNumber = "organizationNumber"
	StreetAddress      = "streetAddress"
	PostalCode         = "postalCode"
	PostalAddress      = "postalAddress"
	Phone              = "phone"
	Email              = "email"
)

var (
	// BillingRequired lists the fields a billing address must carry.
	BillingRequired = []string{FirstName, LastName, StreetAddress, PostalCode, PostalAddress, Phone, Email}
	// ShippingRequired applies when the order ships to a separate address.
	ShippingRequired = []string{FirstName, LastName, StreetAddress, PostalCode, PostalAddress}
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`)
	postcodePattern = regexp.MustCompile(`^[0-9]{4,10}$`)
)

// formatRules holds the tags chained after "required". Fields absent here
// accept any non-empty value.
var formatRules = map[string]string{
	FirstName:  "min=3",
	LastName:   "min=3",
	PostalCode: "postcode",
	Phone:      "phone",
	Email:      "simpleemail",
}

var messages = map[string]string{
	FirstName:     "First name is required",
	LastName:      "Last name is required",
	StreetAddress: "Street address is required",
	PostalCode:    "Postal code is required",
	PostalAddress: "City is required",
	Phone:         "Phone number is required",
	Email:         "Email is required",
}

var formatMessages = map[string]string{
	"min":         "Must be at least 3 characters",
	"postcode":    "Postal code must be 4 to 10 digits",
	"phone":       "Phone number must have at least 10 digits",
	"simpleemail": "Enter a valid email address",
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(val, "simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(val, "postcode", func(fl validator.FieldLevel) bool {
		return postcodePattern.MatchString(fl.Field().String())
	})
	mustRegister(val, "phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !phonePattern.MatchString(s) {
			return false
		}
		digits := 0
		for _, r := range s {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits >= 10
	})
	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Field checks one value as a required field. It returns the message to show
// and false when the value is rejected.
func Field(name, value string) (string, bool) {
	return check(name, value, true)
}

func check(name, value string, required bool) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" && !required {
		return "", true
	}
	tags := formatRules[name]
	if required {
		if tags == "" {
			tags = "required"
		} else {
			tags = "required," + tags
		}
	}
	if tags == "" {
		return "", true
	}
	if err := v.Var(value, tags); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if verrs[0].Tag() == "required" {
				return requiredMessage(name), false
			}
			if msg, ok := formatMessages[verrs[0].Tag()]; ok {
				return msg, false
			}
		}
		return "Invalid value", false
	}
	return "", true
}

func requiredMessage(name string) string {
	if msg, ok := messages[name]; ok {
		return msg
	}
	return "This field is required"
}

// Form validates every submitted field plus every required field that is
// missing from data. The result is empty when the form is valid.
func Form(data map[string]string, required []string) map[string]string {
	need := make(map[string]bool, len(required))
	for _, name := range required {
		need[name] = true
	}
	errs := make(map[string]string)
	for name, value := range data {
		if msg, ok := check(name, value, need[name]); !ok {
			errs[name] = msg
		}
	}
	for name := range need {
		if _, seen := data[name]; seen {
			continue
		}
		if msg, ok := check(name, "", true); !ok {
			errs[name] = msg
		}
	}
	return errs
}

// Address validates a typed address, prefixing each error key, e.g. "billing.email".
// Phone and email are only checked when required or filled in.
func Address(prefix string, addr domain.Address, required []string) map[string]string {
	errs := Form(addressFields(addr), required)
	if prefix == "" {
		return errs
	}
	out := make(map[string]string, len(errs))
	for k, msg := range errs {
		out[prefix+"."+k] = msg
	}
	return out
}

func addressFields(a domain.Address) map[string]string {
	return map[string]string{
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		OrganizationNumber: a.OrganizationNumber,
		StreetAddress:      a.StreetAddress,
		PostalCode:         a.PostalCode,
		PostalAddress:      a.PostalAddress,
		Phone:              a.Phone,
		Email:              a.Email,
	}
}

// Normalize trims every field of the address and brings it to NFC so that
// stored names compare equal regardless of how they were typed.
func Normalize(a domain.Address) domain.Address {
	return domain.Address{
		FirstName:          clean(a.FirstName),
		LastName:           clean(a.LastName),
		OrganizationNumber: clean(a.OrganizationNumber),
		StreetAddress:      clean(a.StreetAddress),
		PostalCode:         clean(a.PostalCode),
		PostalAddress:      clean(a.PostalAddress),
		Phone:              clean(a.Phone),
		Email:              clean(a.Email),
	}
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
