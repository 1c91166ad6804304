package memory

import (
	"context"
	"sort"
	"sync"

	"wey/internal/core"
)

type MessageStore struct {
	mu         sync.Mutex
	contacts   []core.Contact
	messages   []core.Message
	broadcasts []core.BroadcastMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) AddContact(_ context.Context, c *core.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].OwnerID == c.OwnerID && s.contacts[i].WeyID == c.WeyID {
			return core.ErrDuplicateContact
		}
	}
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s *MessageStore) ListContacts(_ context.Context, ownerID string) ([]core.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Contact, 0)
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MessageStore) DeleteContact(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.contacts[:0]
	for _, c := range s.contacts {
		if c.ID == id && c.OwnerID == ownerID {
			continue
		}
		kept = append(kept, c)
	}
	s.contacts = kept
	return nil
}

func (s *MessageStore) AddMessage(_ context.Context, m *core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MessageStore) Conversation(_ context.Context, ownerID, ownerWey, peerID, peerWey string, limit int) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Message, 0)
	for _, m := range s.messages {
		sentByOwner := m.FromID == ownerID && m.ToWeyID == peerWey
		sentByPeer := m.FromID == peerID && m.ToWeyID == ownerWey
		if sentByOwner || sentByPeer {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MessageStore) MarkRead(_ context.Context, ownerWey, peerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for i := range s.messages {
		m := &s.messages[i]
		if m.FromID == peerID && m.ToWeyID == ownerWey && !m.Read {
			m.Read = true
			flipped++
		}
	}
	return flipped, nil
}

func (s *MessageStore) UnreadCount(_ context.Context, ownerWey, peerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.FromID == peerID && m.ToWeyID == ownerWey && !m.Read {
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) AddBroadcast(_ context.Context, b *core.BroadcastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, *b)
	return nil
}

func (s *MessageStore) ListBroadcast(_ context.Context, limit int) ([]core.BroadcastMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BroadcastMessage, len(s.broadcasts))
	copy(out, s.broadcasts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
