package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wey/internal/amqp"
	"wey/internal/core"
	applog "wey/internal/log"
	"wey/internal/store"
)

// TransactionInput is the caller-supplied part of a new transaction.
type TransactionInput struct {
	Type        core.TransactionType
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// Invalidator drops cached analytics for a user after a mutation.
type Invalidator interface {
	Invalidate(userID string)
}

// Finance records and removes transactions. When an AMQP client is
// configured, mutations also publish a transaction event; publish failures
// never fail the request since the store write already succeeded.
type Finance struct {
	txs    store.TransactionStore
	events *amqp.Client
	caches Invalidator
}

func NewFinance(txs store.TransactionStore, events *amqp.Client, caches Invalidator) *Finance {
	return &Finance{txs: txs, events: events, caches: caches}
}

func (f *Finance) Create(ctx context.Context, userID string, in TransactionInput) (*core.Transaction, error) {
	tx := &core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        in.Type,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   time.Now(),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := f.txs.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	f.invalidate(userID)
	f.publish(ctx, amqp.EventTransactionCreated, tx.ID, userID, string(tx.Type), tx.Amount.String())
	return tx, nil
}

// Delete is scoped to id+owner and succeeds even when nothing matches.
func (f *Finance) Delete(ctx context.Context, id, userID string) error {
	if err := f.txs.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	f.invalidate(userID)
	f.publish(ctx, amqp.EventTransactionDeleted, id, userID, "", "")
	return nil
}

func (f *Finance) ListByUser(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	return f.txs.ListByUser(ctx, userID, limit)
}

func (f *Finance) ListByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	return f.txs.ListByRange(ctx, userID, start, end)
}

func (f *Finance) invalidate(userID string) {
	if f.caches != nil {
		f.caches.Invalidate(userID)
	}
}

func (f *Finance) publish(ctx context.Context, event, txID, userID, txType, amount string) {
	if f.events == nil {
		return
	}
	ev := amqp.NewTransactionEvent(event, txID, userID, txType, amount)
	if err := f.events.PublishTransactionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldError, err, applog.FieldEvent, event, applog.FieldTransactionID, txID)
	}
}
