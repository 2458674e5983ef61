package validate

import (
	"errors"
	"reflect"
	"testing"
)

// reasonOf extracts the Reason from a validation error, or "" for nil.
func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a *ValidationError", err)
	}
	return ve.Reason
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		value string
		want  Reason
	}{
		{"Juan", ""},
		{" Juan ", ""},
		{"", ReasonRequired},
		{"   ", ReasonRequired},
		{"\t", ReasonRequired},
	}
	for _, tt := range tests {
		err := ValidateName(FieldFirstName, tt.value)
		if got := reasonOf(t, err); got != tt.want {
			t.Errorf("ValidateName(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestValidateName_ReportsField(t *testing.T) {
	var ve *ValidationError
	if !errors.As(ValidateName(FieldLastName, ""), &ve) {
		t.Fatal("expected *ValidationError")
	}
	if ve.Field != FieldLastName {
		t.Errorf("Field = %q, want %q", ve.Field, FieldLastName)
	}
	if ve.Message() != "last name is required" {
		t.Errorf("Message() = %q", ve.Message())
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		value string
		want  Reason
	}{
		{"+54 11 1234-5678", ""},
		{"1234567", ""},
		{"(011) 555-0100", ""},
		{"+1 (555) 010 0100", ""},
		{"", ReasonRequired},
		{"   ", ReasonRequired},
		{"123", ReasonInvalidFormat},
		{"123456", ReasonInvalidFormat},
		{"555-CALL-NOW", ReasonInvalidFormat},
		{"++541112345678", ReasonInvalidFormat},
		{"12+3456789", ReasonInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := reasonOf(t, ValidatePhone(tt.value)); got != tt.want {
				t.Errorf("ValidatePhone(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		value string
		want  Reason
	}{
		{"", ""},
		{"  ", ""},
		{"a@b.com", ""},
		{"juan.perez@email.com", ""},
		{"first+tag_x-y@sub.domain.org", ""},
		{"not-an-email", ReasonInvalidFormat},
		{"a@b", ReasonInvalidFormat},
		{"a@b.c", ReasonInvalidFormat},
		{"@b.com", ReasonInvalidFormat},
		{"a b@c.com", ReasonInvalidFormat},
		{"a@b.c0m", ReasonInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := reasonOf(t, ValidateEmail(tt.value)); got != tt.want {
				t.Errorf("ValidateEmail(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateForm_Valid(t *testing.T) {
	res := ValidateForm(Fields{
		FirstName: "Juan",
		LastName:  "Perez",
		Phone:     "+54 11 1234-5678",
		Email:     "juan.perez@email.com",
	})
	if !res.Valid {
		t.Fatalf("Valid = false, errors = %v", res.Errors)
	}
	if len(res.Errors) != 0 || len(res.Failures) != 0 {
		t.Errorf("expected no errors, got %v", res.Errors)
	}
}

func TestValidateForm_OptionalEmailSkipped(t *testing.T) {
	res := ValidateForm(Fields{FirstName: "Ana", LastName: "Martinez", Phone: "5550100", Email: "   "})
	if !res.Valid {
		t.Errorf("blank email should pass, errors = %v", res.Errors)
	}
}

func TestValidateForm_AggregatesAllErrors(t *testing.T) {
	// Given a form where every validated field is wrong
	f := Fields{FirstName: " ", LastName: "", Phone: "12", Email: "nope"}

	// When it is validated
	res := ValidateForm(f)

	// Then every field reports, not just the first
	if res.Valid {
		t.Fatal("Valid = true, want false")
	}
	want := map[Field]string{
		FieldFirstName: "first name is required",
		FieldLastName:  "last name is required",
		FieldPhone:     "invalid phone format",
		FieldEmail:     "invalid email format",
	}
	if !reflect.DeepEqual(res.Errors, want) {
		t.Errorf("Errors = %v, want %v", res.Errors, want)
	}

	var order []Field
	for _, fe := range res.Failures {
		order = append(order, fe.Field)
	}
	wantOrder := []Field{FieldFirstName, FieldLastName, FieldPhone, FieldEmail}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("Failures order = %v, want %v", order, wantOrder)
	}
}

func TestValidateForm_PhoneRequiredBeforeFormat(t *testing.T) {
	res := ValidateForm(Fields{FirstName: "A", LastName: "B", Phone: ""})
	if got := res.Error(FieldPhone); got != "phone is required" {
		t.Errorf("phone error = %q, want %q", got, "phone is required")
	}
	if res.Error(FieldFirstName) != "" {
		t.Errorf("first name should pass, got %q", res.Error(FieldFirstName))
	}
}

func TestFields_ContactTrims(t *testing.T) {
	c := Fields{
		FirstName: "  Lucia ",
		LastName:  "Diaz\t",
		Phone:     " 555 0100 ",
		Email:     " l@d.com",
		Company:   " Acme ",
		Address:   " Calle 1 ",
	}.Contact()

	if c.FirstName != "Lucia" || c.LastName != "Diaz" || c.Phone != "555 0100" ||
		c.Email != "l@d.com" || c.Company != "Acme" || c.Address != "Calle 1" {
		t.Errorf("Contact() = %+v, want trimmed values", c)
	}
	if c.ID != "" || c.Favorite {
		t.Errorf("Contact() should leave ID empty and Favorite false, got %+v", c)
	}
}
