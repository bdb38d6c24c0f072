package models

import (
	"errors"
	"reflect"
	"testing"
)

func problems(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Problems
}

func TestSignupRules(t *testing.T) {
	got := problems(t, SignupData{Name: " A ", Email: "not-an-email", Password: "123"}.Validate())
	want := []string{
		"name must be at least 2 characters",
		"email must be a valid email",
		"password must be at least 6 characters",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("problems = %q, want %q", got, want)
	}

	if err := (SignupData{Name: "रवि", Email: " ravi@example.com ", Password: "secret1"}).Validate(); err != nil {
		t.Fatalf("valid signup rejected: %v", err)
	}
}

func TestProductInputRules(t *testing.T) {
	got := problems(t, func() error {
		_, err := ProductInput{Name: ProductName{En: "  T ", Hi: "दू"}, Price: -1, Category: " ", Unit: "g"}.Validate()
		return err
	}())
	want := []string{
		"name.en must be at least 2 characters",
		"price must be 0 or more",
		"category is required",
		"unit must be one of pc, kg, L",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("problems = %q, want %q", got, want)
	}

	p, err := ProductInput{Name: ProductName{En: " Milk ", Hi: "दूध"}, Price: 60, Category: " Dairy ", Unit: "L"}.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name.En != "Milk" || p.Category != "Dairy" || p.Unit != UnitLiter || !p.Available || p.Image != PlaceholderImage {
		t.Fatalf("unexpected normalized product %+v", p)
	}
}

func TestProfileUpdateRules(t *testing.T) {
	short := " x "
	if got := problems(t, ProfileUpdate{Name: &short}.Validate()); len(got) != 1 {
		t.Fatalf("problems = %q", got)
	}
	if err := (ProfileUpdate{}).Validate(); err != nil {
		t.Fatalf("empty update rejected: %v", err)
	}
}

func TestBindingValidatorDereferences(t *testing.T) {
	in := &SignupData{Name: "Asha", Email: "asha@example.com"}
	if got := problems(t, BindingValidator{}.ValidateStruct(in)); len(got) != 1 || got[0] != "password is required" {
		t.Fatalf("problems = %q", got)
	}
	if err := (BindingValidator{}).ValidateStruct(nil); err != nil {
		t.Fatal(err)
	}
}
