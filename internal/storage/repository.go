// Package storage is the sqlite-backed implementation of the store ports,
// used when DATA_BACKEND=sqlite. It is also what wey-worker reads so the
// worker sees the same data as the API process.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"wey/internal/core"
)

type Repository struct {
	db *sql.DB
}

func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- user directory ----

func (r *Repository) Create(ctx context.Context, u *core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, credential, wey_id, monthly_target, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Credential, u.WeyID, u.MonthlyTarget.String(), formatTime(u.CreatedAt))
	if err != nil {
		// The unique indexes are the atomic check-and-insert guard.
		if strings.Contains(err.Error(), "users.credential") {
			return core.ErrCredentialTaken
		}
		if strings.Contains(err.Error(), "users.wey_id") {
			return core.ErrWeyIDTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) ByCredential(ctx context.Context, credential string) (*core.User, error) {
	return r.userBy(ctx, "credential", credential)
}

func (r *Repository) ByID(ctx context.Context, id string) (*core.User, error) {
	return r.userBy(ctx, "id", id)
}

func (r *Repository) ByWeyID(ctx context.Context, weyID string) (*core.User, error) {
	return r.userBy(ctx, "wey_id", weyID)
}

func (r *Repository) userBy(ctx context.Context, column, value string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, credential, wey_id, monthly_target, created_at
		 FROM users WHERE `+column+` = ?`, value)

	var u core.User
	var target, createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Credential, &u.WeyID, &target, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}
	if u.MonthlyTarget, err = decimal.NewFromString(target); err != nil {
		return nil, fmt.Errorf("parse monthly target: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &u, nil
}

// ---- transaction store ----

func (r *Repository) Insert(ctx context.Context, tx *core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, category, amount, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.String(),
		tx.Description, formatTime(tx.Date), formatTime(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	// Zero rows affected is fine: delete is an idempotent no-op.
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, category, amount, description, date, created_at
		 FROM transactions WHERE user_id = ? ORDER BY date DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.queryTransactions(ctx, query, args...)
}

func (r *Repository) ListByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, user_id, type, category, amount, description, date, created_at
		 FROM transactions WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC`,
		userID, formatTime(start), formatTime(end))
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var tx core.Transaction
		var typ, amount, date, createdAt string
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Category, &amount,
			&tx.Description, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if tx.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		if tx.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ---- message store ----

func (r *Repository) AddContact(ctx context.Context, c *core.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, owner_id, wey_id, name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.WeyID, c.Name, formatTime(c.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.ErrDuplicateContact
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *Repository) ListContacts(ctx context.Context, ownerID string) ([]core.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, wey_id, name, created_at
		 FROM contacts WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	out := make([]core.Contact, 0)
	for rows.Next() {
		var c core.Contact
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.WeyID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteContact(ctx context.Context, id, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (r *Repository) AddMessage(ctx context.Context, m *core.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, from_id, to_wey_id, content, kind, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.FromID, m.ToWeyID, m.Content, string(m.Kind), boolToInt(m.Read),
		formatTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *Repository) Conversation(ctx context.Context, ownerID, ownerWey, peerID, peerWey string, limit int) ([]core.Message, error) {
	query := `SELECT id, from_id, to_wey_id, content, kind, read, created_at
		 FROM messages
		 WHERE (from_id = ? AND to_wey_id = ?) OR (from_id = ? AND to_wey_id = ?)
		 ORDER BY created_at DESC`
	args := []any{ownerID, peerWey, peerID, ownerWey}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	out := make([]core.Message, 0)
	for rows.Next() {
		var m core.Message
		var kind, createdAt string
		var read int
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToWeyID, &m.Content, &kind, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Kind = core.MessageKind(kind)
		m.Read = read != 0
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (r *Repository) MarkRead(ctx context.Context, ownerWey, peerID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = 1
		 WHERE to_wey_id = ? AND from_id = ? AND read = 0`, ownerWey, peerID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (r *Repository) UnreadCount(ctx context.Context, ownerWey, peerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages
		 WHERE to_wey_id = ? AND from_id = ? AND read = 0`, ownerWey, peerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (r *Repository) AddBroadcast(ctx context.Context, b *core.BroadcastMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO broadcast_messages (id, from_id, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		b.ID, b.FromID, b.Content, formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert broadcast: %w", err)
	}
	return nil
}

func (r *Repository) ListBroadcast(ctx context.Context, limit int) ([]core.BroadcastMessage, error) {
	query := `SELECT id, from_id, content, created_at
		 FROM broadcast_messages ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query broadcasts: %w", err)
	}
	defer rows.Close()

	out := make([]core.BroadcastMessage, 0)
	for rows.Next() {
		var b core.BroadcastMessage
		var createdAt string
		if err := rows.Scan(&b.ID, &b.FromID, &b.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate broadcasts: %w", err)
	}
	return out, nil
}

// Timestamps are stored as UTC RFC 3339 text with a fixed-width fraction so
// lexicographic comparison in SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
