package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"0188d0f2-7b8c-7b4a-8a2b",              // truncated
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31", "2024-02-29"}
	invalid := []string{"2023-13-01", "2023-02-30", "01-01-2023", "2023/01/01", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	if _, ok := IsValidClock("09:15:00"); !ok {
		t.Error("IsValidClock(09:15:00) = false, want true")
	}
	if _, ok := IsValidClock("24:00:00"); ok {
		t.Error("IsValidClock(24:00:00) = true, want false")
	}
}

type sampleRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=a b"`
	Date  string `json:"date" validate:"omitempty,date"`
	Clock string `json:"clock" validate:"omitempty,clock"`
	Total int    `json:"total" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	if errs := Struct(sampleRequest{Kind: "a", Date: "2024-01-01", Clock: "09:00"}); errs != nil {
		t.Fatalf("Struct(valid) = %v, want nil", errs)
	}

	errs := Struct(sampleRequest{Kind: "c", Date: "2024-31-01", Clock: "9am", Total: -1})
	got := errs.ToMap()
	for _, field := range []string{"kind", "date", "clock", "total"} {
		if _, ok := got[field]; !ok {
			t.Errorf("Struct(invalid) missing error for %q; got %v", field, got)
		}
	}
	if got["kind"] != "must be one of: a b" {
		t.Errorf("kind message = %q", got["kind"])
	}
}

func TestValidationErrorsErr(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Error("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("field", "is required")
	if errs.Err() == nil {
		t.Error("non-empty ValidationErrors.Err() should not be nil")
	}
	if errs.Error() != "field: is required" {
		t.Errorf("Error() = %q", errs.Error())
	}
}
