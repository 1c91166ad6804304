// Package worker watches transaction events and reports users whose
// month-to-date expenses exceed their monthly savings target. It is purely
// observational; nothing in the request path depends on it.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"wey/internal/amqp"
	"wey/internal/core"
	applog "wey/internal/log"
	"wey/internal/store"
)

type BudgetWatcher struct {
	users store.UserDirectory
	txs   store.TransactionStore
	now   func() time.Time
}

func NewBudgetWatcher(users store.UserDirectory, txs store.TransactionStore) *BudgetWatcher {
	return &BudgetWatcher{users: users, txs: txs, now: time.Now}
}

// WithClock overrides the time source for tests.
func (w *BudgetWatcher) WithClock(now func() time.Time) *BudgetWatcher {
	w.now = now
	return w
}

// HandleEvent reacts to one transaction event. Only created expenses can
// push a user over target, so everything else is acknowledged untouched.
func (w *BudgetWatcher) HandleEvent(ev *amqp.TransactionEvent) error {
	if ev.Event != amqp.EventTransactionCreated || ev.Type != string(core.Expense) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exceeded, total, target, err := w.CheckUser(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if exceeded {
		slog.WarnContext(ctx, "Monthly target exceeded",
			applog.FieldUserID, ev.UserID,
			"month_expense", total.String(),
			"monthly_target", target.String())
	}
	return nil
}

// CheckUser compares the user's month-to-date expense total against their
// monthly savings target. A zero target disables the check.
func (w *BudgetWatcher) CheckUser(ctx context.Context, userID string) (exceeded bool, total, target decimal.Decimal, err error) {
	u, err := w.users.ByID(ctx, userID)
	if err != nil {
		return false, decimal.Zero, decimal.Zero, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.MonthlyTarget.IsZero() {
		return false, decimal.Zero, decimal.Zero, nil
	}

	now := w.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	txs, err := w.txs.ListByRange(ctx, userID, monthStart, now)
	if err != nil {
		return false, decimal.Zero, decimal.Zero, fmt.Errorf("list month transactions: %w", err)
	}

	total = decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Expense {
			total = total.Add(tx.Amount)
		}
	}
	return total.GreaterThan(u.MonthlyTarget), total, u.MonthlyTarget, nil
}
