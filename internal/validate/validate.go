// Package validate checks new-contact form input. All checks are pure and
// a form is validated as a whole so every field error can be shown after a
// single submit.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smileynet/rolodex/internal/contact"
)

// Field identifies a form field.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
)

// Reason is why a field failed.
type Reason string

const (
	ReasonRequired      Reason = "required"
	ReasonInvalidFormat Reason = "invalid-format"
)

// Validator tags registered on the shared validator.
const (
	tagFilled    = "filled"
	tagPhone     = "phone"
	tagEmailLite = "emaillite"
)

var (
	phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{7,}$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// ValidationError reports a single failed field.
type ValidationError struct {
	Field  Field
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Message returns the text shown next to the field.
func (e *ValidationError) Message() string {
	label := fieldLabel(e.Field)
	if e.Reason == ReasonRequired {
		return label + " is required"
	}
	return "invalid " + label + " format"
}

func fieldLabel(f Field) string {
	switch f {
	case FieldFirstName:
		return "first name"
	case FieldLastName:
		return "last name"
	default:
		return string(f)
	}
}

// Fields is the raw input of the new-contact form.
type Fields struct {
	FirstName string `form:"first_name" validate:"filled"`
	LastName  string `form:"last_name" validate:"filled"`
	Phone     string `form:"phone" validate:"filled,phone"`
	Email     string `form:"email" validate:"emaillite"`
	Company   string `form:"company"`
	Address   string `form:"address"`
}

// Contact builds the record a valid form saves, with every value trimmed.
func (f Fields) Contact() contact.Contact {
	return contact.Contact{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     strings.TrimSpace(f.Phone),
		Email:     strings.TrimSpace(f.Email),
		Company:   strings.TrimSpace(f.Company),
		Address:   strings.TrimSpace(f.Address),
	}
}

// FieldsOf returns the form input that would produce c.
func FieldsOf(c contact.Contact) Fields {
	return Fields{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
		Company:   c.Company,
		Address:   c.Address,
	}
}

// Result is the outcome of validating a whole form.
type Result struct {
	Valid bool
	// Errors maps each failed field to its display message.
	Errors map[Field]string
	// Failures lists the same errors in form order.
	Failures []*ValidationError
}

// Error returns the message for f, or "" when the field passed.
func (r Result) Error(f Field) string {
	return r.Errors[f]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return sf.Tag.Get("form")
	})
	mustRegister(v, tagFilled, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, tagPhone, func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	// Email is optional: blank passes.
	mustRegister(v, tagEmailLite, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimSpace(s) == "" || emailPattern.MatchString(s)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: registering %q: %v", tag, err))
	}
}

// ValidateName fails with ReasonRequired when value is blank.
func ValidateName(field Field, value string) error {
	return check(field, value, tagFilled)
}

// ValidatePhone fails with ReasonRequired when value is blank and with
// ReasonInvalidFormat when it is not a plausible phone number.
func ValidatePhone(value string) error {
	return check(FieldPhone, value, tagFilled+","+tagPhone)
}

// ValidateEmail accepts a blank value and otherwise requires a
// local@domain.tld shape.
func ValidateEmail(value string) error {
	return check(FieldEmail, value, tagEmailLite)
}

// ValidateForm checks every field without stopping at the first failure.
func ValidateForm(f Fields) Result {
	res := Result{Valid: true, Errors: map[Field]string{}}

	err := validate.Struct(f)
	if err == nil {
		return res
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Only reachable on programmer error (non-struct input).
		panic(fmt.Sprintf("validate: unexpected error: %v", err))
	}

	res.Valid = false
	for _, fe := range ve {
		e := &ValidationError{Field: Field(fe.Field()), Reason: reasonFor(fe.Tag())}
		res.Failures = append(res.Failures, e)
		res.Errors[e.Field] = e.Message()
	}
	return res
}

func check(field Field, value, tags string) error {
	err := validate.Var(value, tags)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &ValidationError{Field: field, Reason: reasonFor(ve[0].Tag())}
	}
	return fmt.Errorf("validate: %s: %w", field, err)
}

func reasonFor(tag string) Reason {
	if tag == tagFilled {
		return ReasonRequired
	}
	return ReasonInvalidFormat
}
