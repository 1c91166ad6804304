package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	KindText MessageKind = "text"
	KindPing MessageKind = "ping"
)

// WeyIDLength is the fixed length of every public handle.
const WeyIDLength = 8

type (
	TransactionType string

	MessageKind string

	// User is an identity record. Credential and WeyID are globally unique;
	// the record is immutable after registration.
	User struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Credential    string          `json:"-"`
		WeyID         string          `json:"weyId"`
		MonthlyTarget decimal.Decimal `json:"monthlyTarget"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	// Transaction is a single income or expense event owned by one user.
	// Transactions are created and deleted, never updated in place.
	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// Contact is a directed relationship: the owner recognizes WeyID under Name.
	Contact struct {
		ID        string    `json:"id"`
		OwnerID   string    `json:"ownerId"`
		WeyID     string    `json:"contactWeyId"`
		Name      string    `json:"contactName"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Message is a direct communication from a user (by id) to a handle.
	// Read is a one-way transition flipped when the recipient opens the
	// conversation; messages are never deleted.
	Message struct {
		ID        string      `json:"id"`
		FromID    string      `json:"fromId"`
		ToWeyID   string      `json:"toWeyId"`
		Content   string      `json:"content"`
		Kind      MessageKind `json:"messageType"`
		Read      bool        `json:"read"`
		CreatedAt time.Time   `json:"createdAt"`
	}

	// BroadcastMessage has no recipient and is visible to all users.
	BroadcastMessage struct {
		ID        string    `json:"id"`
		FromID    string    `json:"fromId"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrCredentialTaken   = errors.New("credential already in use")
	ErrWeyIDTaken        = errors.New("wey id already in use")
	ErrUnknownCredential = errors.New("unknown credential")
	ErrUnknownWeyID      = errors.New("wey id not found")
	ErrDuplicateContact  = errors.New("contact already exists")
	ErrNotFound          = errors.New("not found")

	ErrEmptyName        = errors.New("empty name")
	ErrEmptyContent     = errors.New("empty content")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidKind      = errors.New("invalid message type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTarget    = errors.New("invalid monthly target")
	ErrEmptyCredential  = errors.New("empty credential")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// ExpenseCategories and IncomeCategories are the conventional sets per
// classification. Category membership is validated against the union only;
// an income transaction may carry an expense category.
var (
	ExpenseCategories = []string{
		"food", "transport", "housing", "utilities", "health",
		"entertainment", "shopping", "education", "other",
	}
	IncomeCategories = []string{
		"salary", "bonus", "investment", "allowance", "gift", "other",
	}
)

// KnownCategory reports whether name belongs to either category set.
func KnownCategory(name string) bool {
	for _, c := range ExpenseCategories {
		if c == name {
			return true
		}
	}
	for _, c := range IncomeCategories {
		if c == name {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (k MessageKind) Valid() bool {
	return k == KindText || k == KindPing
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Category) == "" || !KnownCategory(tx.Category) {
		return ErrInvalidCategory
	}
	if len(tx.Description) > 200 {
		return ErrDescriptionLong
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Message) Validate() error {
	if !m.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Credential) == "" {
		return ErrEmptyCredential
	}
	if u.MonthlyTarget.IsNegative() {
		return ErrInvalidTarget
	}
	return nil
}
