package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wey/internal/core"
)

func TestUserDirectoryUniqueness(t *testing.T) {
	ctx := context.Background()
	d := NewUserDirectory()

	first := &core.User{ID: "u1", Name: "Ada", Credential: "wey_a", WeyID: "AAAA1111"}
	if err := d.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dupCred := &core.User{ID: "u2", Name: "Bob", Credential: "wey_a", WeyID: "BBBB2222"}
	if err := d.Create(ctx, dupCred); err != core.ErrCredentialTaken {
		t.Fatalf("expected ErrCredentialTaken, got %v", err)
	}
	dupWey := &core.User{ID: "u3", Name: "Eve", Credential: "wey_c", WeyID: "AAAA1111"}
	if err := d.Create(ctx, dupWey); err != core.ErrWeyIDTaken {
		t.Fatalf("expected ErrWeyIDTaken, got %v", err)
	}

	// Rejected inserts must not be visible through any lookup.
	if u, _ := d.ByID(ctx, "u2"); u != nil {
		t.Fatal("rejected user leaked into the directory")
	}
}

func TestUserDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	d := NewUserDirectory()
	u := &core.User{ID: "u1", Name: "Ada", Credential: "wey_a", WeyID: "AAAA1111"}
	if err := d.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	byCred, err := d.ByCredential(ctx, "wey_a")
	if err != nil || byCred == nil || byCred.ID != "u1" {
		t.Fatalf("ByCredential = %v, %v", byCred, err)
	}
	byWey, err := d.ByWeyID(ctx, "AAAA1111")
	if err != nil || byWey == nil || byWey.ID != "u1" {
		t.Fatalf("ByWeyID = %v, %v", byWey, err)
	}

	// Absent is (nil, nil), not an error.
	missing, err := d.ByCredential(ctx, "wey_nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", missing, err)
	}
	missing, err = d.ByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", missing, err)
	}
}

func tx(id, userID string, typ core.TransactionType, amount int64, day int) *core.Transaction {
	return &core.Transaction{
		ID:       id,
		UserID:   userID,
		Type:     typ,
		Category: "food",
		Amount:   decimal.NewFromInt(amount),
		Date:     time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestTransactionStoreListOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore()
	for _, x := range []*core.Transaction{
		tx("t1", "u1", core.Expense, 10, 1),
		tx("t2", "u1", core.Expense, 20, 3),
		tx("t3", "u1", core.Income, 30, 2),
		tx("t4", "other", core.Expense, 99, 4),
	} {
		if err := s.Insert(ctx, x); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}
	for i, want := range []string{"t2", "t3", "t1"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}

	limited, err := s.ListByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "t2" {
		t.Fatalf("limited list wrong: %v", limited)
	}
}

func TestTransactionStoreRangeInclusive(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore()
	for _, x := range []*core.Transaction{
		tx("t1", "u1", core.Expense, 10, 1),
		tx("t2", "u1", core.Expense, 20, 2),
		tx("t3", "u1", core.Expense, 30, 3),
	} {
		_ = s.Insert(ctx, x)
	}

	// Bounds land exactly on t1 and t2; both must be included.
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	got, err := s.ListByRange(ctx, "u1", start, end)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t2" || got[1].ID != "t1" {
		t.Fatalf("unexpected range result: %v", got)
	}
}

func TestTransactionStoreDeleteScoped(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore()
	_ = s.Insert(ctx, tx("t1", "u1", core.Expense, 10, 1))

	// Wrong owner is a silent no-op.
	if err := s.Delete(ctx, "t1", "someone-else"); err != nil {
		t.Fatalf("delete wrong owner: %v", err)
	}
	got, _ := s.ListByUser(ctx, "u1", 0)
	if len(got) != 1 {
		t.Fatal("delete with wrong owner must not remove the transaction")
	}

	// Unknown id is also a no-op.
	if err := s.Delete(ctx, "missing", "u1"); err != nil {
		t.Fatalf("delete missing id: %v", err)
	}

	if err := s.Delete(ctx, "t1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.ListByUser(ctx, "u1", 0)
	if len(got) != 0 {
		t.Fatal("transaction still present after delete")
	}
}

func TestMessageStoreContacts(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore()
	c := &core.Contact{ID: "c1", OwnerID: "u1", WeyID: "BBBB2222", Name: "Bob"}
	if err := s.AddContact(ctx, c); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	dup := &core.Contact{ID: "c2", OwnerID: "u1", WeyID: "BBBB2222", Name: "Bobby"}
	if err := s.AddContact(ctx, dup); err != core.ErrDuplicateContact {
		t.Fatalf("expected ErrDuplicateContact, got %v", err)
	}
	// Same handle under another owner is fine.
	other := &core.Contact{ID: "c3", OwnerID: "u2", WeyID: "BBBB2222", Name: "Bob"}
	if err := s.AddContact(ctx, other); err != nil {
		t.Fatalf("add for other owner: %v", err)
	}

	mine, err := s.ListContacts(ctx, "u1")
	if err != nil || len(mine) != 1 || mine[0].ID != "c1" {
		t.Fatalf("list contacts = %v, %v", mine, err)
	}

	if err := s.DeleteContact(ctx, "c1", "u2"); err != nil {
		t.Fatalf("delete wrong owner: %v", err)
	}
	mine, _ = s.ListContacts(ctx, "u1")
	if len(mine) != 1 {
		t.Fatal("delete with wrong owner must not remove the contact")
	}
	if err := s.DeleteContact(ctx, "c1", "u1"); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	mine, _ = s.ListContacts(ctx, "u1")
	if len(mine) != 0 {
		t.Fatal("contact still present after delete")
	}
}

func msg(id, fromID, toWey string, minute int, read bool) *core.Message {
	return &core.Message{
		ID:        id,
		FromID:    fromID,
		ToWeyID:   toWey,
		Content:   "hello",
		Kind:      core.KindText,
		Read:      read,
		CreatedAt: time.Date(2025, 6, 1, 12, minute, 0, 0, time.UTC),
	}
}

func TestMessageStoreConversation(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore()
	// u1 has handle AAAA1111, u2 has BBBB2222, u3 has CCCC3333.
	_ = s.AddMessage(ctx, msg("m1", "u1", "BBBB2222", 1, false))
	_ = s.AddMessage(ctx, msg("m2", "u2", "AAAA1111", 2, false))
	_ = s.AddMessage(ctx, msg("m3", "u1", "BBBB2222", 3, false))
	_ = s.AddMessage(ctx, msg("m4", "u3", "AAAA1111", 4, false)) // different peer

	got, err := s.Conversation(ctx, "u1", "AAAA1111", "u2", "BBBB2222", 0)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i, want := range []string{"m3", "m2", "m1"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}

	latest, err := s.Conversation(ctx, "u1", "AAAA1111", "u2", "BBBB2222", 1)
	if err != nil || len(latest) != 1 || latest[0].ID != "m3" {
		t.Fatalf("limit 1 = %v, %v", latest, err)
	}
}

func TestMessageStoreMarkReadScoped(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore()
	_ = s.AddMessage(ctx, msg("m1", "u2", "AAAA1111", 1, false))
	_ = s.AddMessage(ctx, msg("m2", "u2", "AAAA1111", 2, true))
	_ = s.AddMessage(ctx, msg("m3", "u3", "AAAA1111", 3, false)) // other sender
	_ = s.AddMessage(ctx, msg("m4", "u1", "BBBB2222", 4, false)) // owner's own outgoing

	n, err := s.UnreadCount(ctx, "AAAA1111", "u2")
	if err != nil || n != 1 {
		t.Fatalf("unread = %d, %v", n, err)
	}

	flipped, err := s.MarkRead(ctx, "AAAA1111", "u2")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 flipped, got %d", flipped)
	}

	// Other senders and the owner's outgoing messages stay untouched.
	n, _ = s.UnreadCount(ctx, "AAAA1111", "u3")
	if n != 1 {
		t.Fatal("message from other sender must stay unread")
	}
	n, _ = s.UnreadCount(ctx, "BBBB2222", "u1")
	if n != 1 {
		t.Fatal("owner's outgoing message must stay unread for its recipient")
	}

	// Second pass finds nothing left to flip.
	flipped, _ = s.MarkRead(ctx, "AAAA1111", "u2")
	if flipped != 0 {
		t.Fatalf("expected 0 flipped on second pass, got %d", flipped)
	}
}

func TestMessageStoreBroadcast(t *testing.T) {
	ctx := context.Background()
	s := NewMessageStore()
	for i, id := range []string{"b1", "b2", "b3"} {
		_ = s.AddBroadcast(ctx, &core.BroadcastMessage{
			ID:        id,
			FromID:    "u1",
			Content:   "news",
			CreatedAt: time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC),
		})
	}

	got, err := s.ListBroadcast(ctx, 0)
	if err != nil || len(got) != 3 {
		t.Fatalf("list = %v, %v", got, err)
	}
	if got[0].ID != "b3" || got[2].ID != "b1" {
		t.Fatalf("broadcasts not newest first: %v", got)
	}

	limited, _ := s.ListBroadcast(ctx, 2)
	if len(limited) != 2 || limited[0].ID != "b3" {
		t.Fatalf("limited broadcasts wrong: %v", limited)
	}
}
