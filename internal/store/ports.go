// Package store defines the persistence ports the API layer depends on.
// Implementations: store/memory (default) and storage (sqlite).
package store

import (
	"context"
	"time"

	"wey/internal/core"
)

// UserDirectory holds user profiles and resolves them by credential, id or
// wey id. Create must perform its uniqueness checks and the insert as a
// single atomic step.
type UserDirectory interface {
	// Create stores a new user. Returns core.ErrCredentialTaken or
	// core.ErrWeyIDTaken if either unique attribute is already present.
	Create(ctx context.Context, u *core.User) error

	// ByCredential returns the user with an exact credential match,
	// or (nil, nil) if absent.
	ByCredential(ctx context.Context, credential string) (*core.User, error)

	// ByID returns the user by internal id, or (nil, nil) if absent.
	ByID(ctx context.Context, id string) (*core.User, error)

	// ByWeyID returns the user owning the handle, or (nil, nil) if absent.
	ByWeyID(ctx context.Context, weyID string) (*core.User, error)
}

// TransactionStore holds transaction records per user.
type TransactionStore interface {
	Insert(ctx context.Context, tx *core.Transaction) error

	// Delete removes the transaction scoped to id+owner. Deleting an
	// id/user pair that does not match is a no-op, not an error.
	Delete(ctx context.Context, id, userID string) error

	// ListByUser returns the user's transactions sorted by occurrence date
	// descending. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]core.Transaction, error)

	// ListByRange returns the user's transactions with start <= date <= end,
	// sorted by occurrence date descending.
	ListByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
}

// MessageStore holds contacts, direct messages and broadcast messages.
type MessageStore interface {
	// AddContact stores a contact. Returns core.ErrDuplicateContact if the
	// owner already has a contact with the same wey id.
	AddContact(ctx context.Context, c *core.Contact) error

	ListContacts(ctx context.Context, ownerID string) ([]core.Contact, error)

	// DeleteContact is scoped to id+owner and is a no-op if absent.
	DeleteContact(ctx context.Context, id, ownerID string) error

	AddMessage(ctx context.Context, m *core.Message) error

	// Conversation merges messages in both directions between the owner
	// (id ownerID, handle ownerWey) and the peer (id peerID, handle peerWey),
	// sorted descending by creation time. limit <= 0 means no limit.
	Conversation(ctx context.Context, ownerID, ownerWey, peerID, peerWey string, limit int) ([]core.Message, error)

	// MarkRead flips read=true on all unread messages from peerID addressed
	// to ownerWey and returns how many were flipped.
	MarkRead(ctx context.Context, ownerWey, peerID string) (int, error)

	// UnreadCount counts unread messages from peerID addressed to ownerWey.
	UnreadCount(ctx context.Context, ownerWey, peerID string) (int, error)

	AddBroadcast(ctx context.Context, b *core.BroadcastMessage) error

	// ListBroadcast returns broadcast messages sorted descending by creation
	// time. limit <= 0 means no limit.
	ListBroadcast(ctx context.Context, limit int) ([]core.BroadcastMessage, error)
}
