package core

import (
	"errors"
	"math"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Date: "2024-01-05", Type: Outflow, Amount: 42.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"bad date", Transaction{Date: "2024-13-01", Type: Inflow, Amount: 1}, ErrInvalidDate},
		{"not iso", Transaction{Date: "01/05/2024", Type: Inflow, Amount: 1}, ErrInvalidDate},
		{"bad type", Transaction{Date: "2024-01-05", Type: "transfer", Amount: 1}, ErrInvalidType},
		{"zero amount", Transaction{Date: "2024-01-05", Type: Inflow, Amount: 0}, ErrInvalidAmount},
		{"nan amount", Transaction{Date: "2024-01-05", Type: Inflow, Amount: math.NaN()}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	if got := (Transaction{Type: Outflow, Amount: 10}).Signed(); got != -10 {
		t.Fatalf("expected -10, got %v", got)
	}
	if got := (Transaction{Type: Inflow, Amount: 10}).Signed(); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestIsValidMonth(t *testing.T) {
	cases := map[string]bool{
		"2024-01": true,
		"2024-12": true,
		"2024-00": false,
		"2024-13": false,
		"2024-1":  false,
		"24-01":   false,
		"":        false,
	}
	for in, want := range cases {
		if got := IsValidMonth(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Checking", Type: "Checking"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: " ", Type: "Checking"}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Account{Name: "Savings"}).Validate(); !errors.Is(err, ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
	if got := (Account{}).GroupOrDefault(); got != DefaultAccountGroup {
		t.Fatalf("expected default group, got %q", got)
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := (Transaction{}).CategoryLabel(); got != UncategorizedLabel {
		t.Fatalf("expected Uncategorized, got %q", got)
	}
	if got := (Transaction{Category: "Food"}).CategoryLabel(); got != "Food" {
		t.Fatalf("expected Food, got %q", got)
	}
}
