package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Category: "food",
		Amount:   decimal.NewFromInt(100),
		Date:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(tx *Transaction)
		want error
	}{
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"empty category", func(tx *Transaction) { tx.Category = " " }, ErrInvalidCategory},
		{"unknown category", func(tx *Transaction) { tx.Category = "crypto" }, ErrInvalidCategory},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		tx := good
		tc.mod(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	long := good
	long.Description = string(make([]byte, 201))
	if err := long.Validate(); err != ErrDescriptionLong {
		t.Fatalf("expected ErrDescriptionLong, got %v", err)
	}

	// Zero amount is allowed.
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	// Category membership is checked against the union of both sets, so an
	// income transaction may carry an expense category and vice versa.
	crossed := good
	crossed.Type = Income
	crossed.Category = "food"
	if err := crossed.Validate(); err != nil {
		t.Fatalf("crossed category should validate, got %v", err)
	}
}

func TestKnownCategory(t *testing.T) {
	for _, c := range ExpenseCategories {
		if !KnownCategory(c) {
			t.Fatalf("expense category %q not recognized", c)
		}
	}
	for _, c := range IncomeCategories {
		if !KnownCategory(c) {
			t.Fatalf("income category %q not recognized", c)
		}
	}
	if KnownCategory("lottery") {
		t.Fatal("unexpected category recognized")
	}
	if KnownCategory("Food") {
		t.Fatal("category match should be case sensitive")
	}
}

func TestMessageValidate(t *testing.T) {
	if err := (Message{Kind: KindText, Content: "hi"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Message{Kind: KindPing, Content: "ping"}).Validate(); err != nil {
		t.Fatalf("expected ok for ping, got %v", err)
	}
	if err := (Message{Kind: "voice", Content: "hi"}).Validate(); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if err := (Message{Kind: KindText, Content: "   "}).Validate(); err != ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	good := User{Name: "Ada", Credential: "wey_abc", MonthlyTarget: decimal.NewFromInt(500)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{Name: " ", Credential: "x"}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (User{Name: "Ada", Credential: ""}).Validate(); err != ErrEmptyCredential {
		t.Fatalf("expected ErrEmptyCredential, got %v", err)
	}
	bad := good
	bad.MonthlyTarget = decimal.NewFromInt(-1)
	if err := bad.Validate(); err != ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}
