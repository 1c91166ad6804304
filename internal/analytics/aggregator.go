// Package analytics derives balance, category and weekly summaries from the
// transaction store. Every figure is recomputed from the store on each call;
// all aggregator functions are pure functions of the transaction set.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"wey/internal/core"
	"wey/internal/store"
)

// DefaultAverageWindowDays is the trailing window used by AveragesByCategory
// when the caller does not override it.
const DefaultAverageWindowDays = 30

type (
	// BalanceSummary holds lifetime totals: balance = income - expense.
	BalanceSummary struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Balance decimal.Decimal `json:"balance"`
	}

	// CategorySum is the expense total and count for one observed category.
	CategorySum struct {
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
		Count    int             `json:"count"`
	}

	// WeekBucket summarizes one Monday-through-Sunday week. WeeksAgo is the
	// offset from the current week; buckets with no transactions still appear
	// with zero sums.
	WeekBucket struct {
		Label    string          `json:"label"`
		WeeksAgo int             `json:"weeksAgo"`
		Start    time.Time       `json:"startDate"`
		End      time.Time       `json:"endDate"`
		Income   decimal.Decimal `json:"income"`
		Expense  decimal.Decimal `json:"expense"`
		Balance  decimal.Decimal `json:"balance"`
	}

	// CategoryAverage is the mean amount per (type, category) group inside
	// the trailing window.
	CategoryAverage struct {
		Type     core.TransactionType `json:"type"`
		Category string               `json:"category"`
		Average  decimal.Decimal      `json:"averageAmount"`
		Count    int                  `json:"transactionCount"`
	}
)

// Aggregator scans the transaction store; it keeps no state of its own.
type Aggregator struct {
	txs store.TransactionStore
	now func() time.Time
}

func NewAggregator(txs store.TransactionStore) *Aggregator {
	return &Aggregator{txs: txs, now: time.Now}
}

// WithClock overrides the time source. Used by tests to pin week boundaries.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

func (a *Aggregator) Balance(ctx context.Context, userID string) (BalanceSummary, error) {
	txs, err := a.txs.ListByUser(ctx, userID, 0)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	return sumBalance(txs), nil
}

func (a *Aggregator) CategoryDistribution(ctx context.Context, userID string) ([]CategorySum, error) {
	txs, err := a.txs.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totals := make(map[string]*CategorySum)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		cs, ok := totals[tx.Category]
		if !ok {
			cs = &CategorySum{Category: tx.Category, Total: decimal.Zero}
			totals[tx.Category] = cs
		}
		cs.Total = cs.Total.Add(tx.Amount)
		cs.Count++
	}

	out := make([]CategorySum, 0, len(totals))
	for _, cs := range totals {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// WeeklyStats returns weekCount consecutive week buckets ending at the
// current week, most recent first. A week runs Monday 00:00:00 through
// Sunday 23:59:59 inclusive in the server's local calendar.
func (a *Aggregator) WeeklyStats(ctx context.Context, userID string, weekCount int) ([]WeekBucket, error) {
	if weekCount <= 0 {
		weekCount = 1
	}

	currentStart := startOfWeek(a.now())
	out := make([]WeekBucket, 0, weekCount)
	for i := 0; i < weekCount; i++ {
		start := currentStart.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 7).Add(-time.Second)

		txs, err := a.txs.ListByRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("list transactions for week %d: %w", i, err)
		}
		sums := sumBalance(txs)
		out = append(out, WeekBucket{
			Label:    weekLabel(i),
			WeeksAgo: i,
			Start:    start,
			End:      end,
			Income:   sums.Income,
			Expense:  sums.Expense,
			Balance:  sums.Balance,
		})
	}
	return out, nil
}

// AveragesByCategory groups the trailing windowDays of transactions by
// (type, category). Every group with at least one transaction is returned;
// threshold filtering is the caller's concern.
func (a *Aggregator) AveragesByCategory(ctx context.Context, userID string, windowDays int) ([]CategoryAverage, error) {
	if windowDays <= 0 {
		windowDays = DefaultAverageWindowDays
	}
	now := a.now()
	start := now.AddDate(0, 0, -windowDays)

	txs, err := a.txs.ListByRange(ctx, userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	type groupKey struct {
		typ      core.TransactionType
		category string
	}
	type groupSum struct {
		total decimal.Decimal
		count int
	}
	groups := make(map[groupKey]*groupSum)
	for _, tx := range txs {
		key := groupKey{typ: tx.Type, category: tx.Category}
		g, ok := groups[key]
		if !ok {
			g = &groupSum{total: decimal.Zero}
			groups[key] = g
		}
		g.total = g.total.Add(tx.Amount)
		g.count++
	}

	out := make([]CategoryAverage, 0, len(groups))
	for key, g := range groups {
		out = append(out, CategoryAverage{
			Type:     key.typ,
			Category: key.category,
			Average:  g.total.Div(decimal.NewFromInt(int64(g.count))),
			Count:    g.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func sumBalance(txs []core.Transaction) BalanceSummary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	return BalanceSummary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// startOfWeek returns Monday 00:00:00 of t's week in t's location.
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started six days earlier
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

func weekLabel(weeksAgo int) string {
	switch weeksAgo {
	case 0:
		return "current week"
	case 1:
		return "1 week ago"
	default:
		return fmt.Sprintf("%d weeks ago", weeksAgo)
	}
}
