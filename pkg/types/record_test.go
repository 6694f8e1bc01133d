package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordFieldsAreFlattened(t *testing.T) {
	f := &Farm{Name: "North Field", Size: 10}
	f.SetID(1)
	f.SetCreatedAt(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Id":1,"createdAt":"2024-03-01T08:00:00Z","name":"North Field","size":10}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}

	var back Farm
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.GetID() != 1 || back.Name != "North Field" {
		t.Fatalf("round trip lost fields: %+v", back)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-05-17")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.May || got.Day() != 17 {
		t.Fatalf("unexpected date %v", got)
	}
	if _, err := ParseDate("17/05/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestValidationErrorIsErrValidation(t *testing.T) {
	err := (&Farm{}).Validate()
	if err == nil {
		t.Fatal("expected validation error for empty farm")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation), got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"name", "location", "size"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("expected field %q in %v", field, ve.Fields)
		}
	}
	if !strings.HasPrefix(err.Error(), "invalid farm: location:") {
		t.Errorf("fields should be listed in sorted order, got %q", err.Error())
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := ErrQuotaExceeded
	err := error(&PersistenceError{Op: "save", Collection: FarmsCollection, Err: cause})
	if !errors.Is(err, ErrPersistence) {
		t.Fatal("expected errors.Is(err, ErrPersistence)")
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatal("expected the cause to be reachable")
	}
	if err.Error() != "save farms: storage quota exceeded" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
