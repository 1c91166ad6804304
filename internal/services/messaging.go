package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"wey/internal/core"
	"wey/internal/store"
)

type (
	// ContactSummary is a contact enriched with the most recent message in
	// either direction and the unread count from that contact.
	ContactSummary struct {
		core.Contact
		LastMessage *core.Message `json:"lastMessage,omitempty"`
		Unread      int           `json:"unreadCount"`
	}

	// ConversationMessage annotates a message with whether the requesting
	// owner sent it.
	ConversationMessage struct {
		core.Message
		Mine bool `json:"mine"`
	}

	// BroadcastView is a broadcast message enriched with the sender's
	// display name and wey id, resolved at read time.
	BroadcastView struct {
		core.BroadcastMessage
		SenderName  string `json:"senderName"`
		SenderWeyID string `json:"senderWeyId"`
	}
)

// Messaging covers contacts, direct messages and the broadcast channel.
// User references are resolved through the directory at call time, never
// embedded.
type Messaging struct {
	users store.UserDirectory
	msgs  store.MessageStore
}

func NewMessaging(users store.UserDirectory, msgs store.MessageStore) *Messaging {
	return &Messaging{users: users, msgs: msgs}
}

// AddContact stores a contact after checking the target handle exists.
func (m *Messaging) AddContact(ctx context.Context, ownerID, targetWey, name string) (*core.Contact, error) {
	target, err := m.users.ByWeyID(ctx, targetWey)
	if err != nil {
		return nil, fmt.Errorf("resolve wey id: %w", err)
	}
	if target == nil {
		return nil, core.ErrUnknownWeyID
	}
	if strings.TrimSpace(name) == "" {
		name = target.Name
	}

	c := &core.Contact{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		WeyID:     targetWey,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := m.msgs.AddContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListContacts enriches each contact with its latest exchanged message and
// the owner's unread count for it.
func (m *Messaging) ListContacts(ctx context.Context, ownerID string) ([]ContactSummary, error) {
	owner, err := m.requireUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contacts, err := m.msgs.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	out := make([]ContactSummary, 0, len(contacts))
	for _, c := range contacts {
		summary := ContactSummary{Contact: c}

		peer, err := m.users.ByWeyID(ctx, c.WeyID)
		if err != nil {
			return nil, fmt.Errorf("resolve contact %s: %w", c.WeyID, err)
		}
		if peer != nil {
			last, err := m.msgs.Conversation(ctx, owner.ID, owner.WeyID, peer.ID, peer.WeyID, 1)
			if err != nil {
				return nil, fmt.Errorf("last message for %s: %w", c.WeyID, err)
			}
			if len(last) > 0 {
				msg := last[0]
				summary.LastMessage = &msg
			}
			if summary.Unread, err = m.msgs.UnreadCount(ctx, owner.WeyID, peer.ID); err != nil {
				return nil, fmt.Errorf("unread count for %s: %w", c.WeyID, err)
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

func (m *Messaging) DeleteContact(ctx context.Context, id, ownerID string) error {
	return m.msgs.DeleteContact(ctx, id, ownerID)
}

// SendDirect creates an unread message after the recipient handle resolves.
// An unknown handle fails and persists nothing.
func (m *Messaging) SendDirect(ctx context.Context, fromID, toWey, content string, kind core.MessageKind) (*core.Message, error) {
	recipient, err := m.users.ByWeyID(ctx, toWey)
	if err != nil {
		return nil, fmt.Errorf("resolve wey id: %w", err)
	}
	if recipient == nil {
		return nil, core.ErrUnknownWeyID
	}

	msg := &core.Message{
		ID:        uuid.NewString(),
		FromID:    fromID,
		ToWeyID:   toWey,
		Content:   content,
		Kind:      kind,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := m.msgs.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	return msg, nil
}

// Conversation merges both directions between the owner and the handle's
// user, newest first, each annotated with whether the owner sent it.
func (m *Messaging) Conversation(ctx context.Context, ownerID, peerWey string, limit int) ([]ConversationMessage, error) {
	owner, err := m.requireUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	peer, err := m.users.ByWeyID(ctx, peerWey)
	if err != nil {
		return nil, fmt.Errorf("resolve wey id: %w", err)
	}
	if peer == nil {
		return nil, core.ErrUnknownWeyID
	}

	msgs, err := m.msgs.Conversation(ctx, owner.ID, owner.WeyID, peer.ID, peer.WeyID, limit)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	out := make([]ConversationMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, ConversationMessage{Message: msg, Mine: msg.FromID == owner.ID})
	}
	return out, nil
}

// MarkRead flips the unread messages directed at the owner from that
// specific contact. Messages from other contacts stay untouched.
func (m *Messaging) MarkRead(ctx context.Context, ownerID, peerWey string) error {
	owner, err := m.requireUser(ctx, ownerID)
	if err != nil {
		return err
	}
	peer, err := m.users.ByWeyID(ctx, peerWey)
	if err != nil {
		return fmt.Errorf("resolve wey id: %w", err)
	}
	if peer == nil {
		return core.ErrUnknownWeyID
	}

	flipped, err := m.msgs.MarkRead(ctx, owner.WeyID, peer.ID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if flipped > 0 {
		slog.InfoContext(ctx, "Conversation marked read",
			"owner_wey_id", owner.WeyID, "peer_wey_id", peerWey, "flipped", flipped)
	}
	return nil
}

func (m *Messaging) SendBroadcast(ctx context.Context, fromID, content string) (*core.BroadcastMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, core.ErrEmptyContent
	}
	b := &core.BroadcastMessage{
		ID:        uuid.NewString(),
		FromID:    fromID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := m.msgs.AddBroadcast(ctx, b); err != nil {
		return nil, fmt.Errorf("store broadcast: %w", err)
	}
	return b, nil
}

// ListBroadcast enriches each broadcast with the sender's name and wey id.
func (m *Messaging) ListBroadcast(ctx context.Context, limit int) ([]BroadcastView, error) {
	broadcasts, err := m.msgs.ListBroadcast(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}

	out := make([]BroadcastView, 0, len(broadcasts))
	for _, b := range broadcasts {
		view := BroadcastView{BroadcastMessage: b}
		sender, err := m.users.ByID(ctx, b.FromID)
		if err != nil {
			return nil, fmt.Errorf("resolve sender %s: %w", b.FromID, err)
		}
		if sender != nil {
			view.SenderName = sender.Name
			view.SenderWeyID = sender.WeyID
		}
		out = append(out, view)
	}
	return out, nil
}

func (m *Messaging) requireUser(ctx context.Context, id string) (*core.User, error) {
	u, err := m.users.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, core.ErrNotFound
	}
	return u, nil
}
