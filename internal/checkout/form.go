package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Form is what the shopper fills in. Card fields are only checked for
// presence; they are never stored.
type Form struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,emailshape"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	ZipCode    string `json:"zipCode" validate:"required"`
	CardName   string `json:"cardName" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"required"`
	CardExpiry string `json:"cardExpiry" validate:"required"`
	CardCVV    string `json:"cardCVV" validate:"required"`
}

var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

var fieldLabels = map[string]string{
	"firstName":  "First name",
	"lastName":   "Last name",
	"email":      "Email",
	"phone":      "Phone",
	"address":    "Address",
	"city":       "City",
	"state":      "State",
	"zipCode":    "Zip code",
	"cardName":   "Cardholder name",
	"cardNumber": "Card number",
	"cardExpiry": "Expiry date",
	"cardCVV":    "CVV",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

func (f Form) trimmed() Form {
	return Form{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    strings.TrimSpace(f.Address),
		City:       strings.TrimSpace(f.City),
		State:      strings.TrimSpace(f.State),
		ZipCode:    strings.TrimSpace(f.ZipCode),
		CardName:   strings.TrimSpace(f.CardName),
		CardNumber: strings.TrimSpace(f.CardNumber),
		CardExpiry: strings.TrimSpace(f.CardExpiry),
		CardCVV:    strings.TrimSpace(f.CardCVV),
	}
}

// validate returns the trimmed form, or a *ValidationError listing every
// invalid field.
func validate(v *validator.Validate, f Form) (Form, error) {
	t := f.trimmed()
	err := v.Struct(t)
	if err == nil {
		return t, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return t, err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		label := fieldLabels[fe.Field()]
		switch fe.Tag() {
		case "required":
			out.Fields[fe.Field()] = label + " is required"
		default:
			out.Fields[fe.Field()] = label + " is invalid"
		}
	}
	return t, out
}

func (f Form) shippingAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Address:   f.Address,
		City:      f.City,
		State:     f.State,
		ZipCode:   f.ZipCode,
	}
}
