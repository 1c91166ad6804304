package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wey/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "wey_test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryUserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	u := &core.User{
		ID: "u1", Name: "Ada", Credential: "wey_a", WeyID: "AAAA1111",
		MonthlyTarget: decimal.NewFromInt(500), CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	dupCred := &core.User{ID: "u2", Name: "Bob", Credential: "wey_a", WeyID: "BBBB2222", CreatedAt: time.Now()}
	if err := repo.Create(ctx, dupCred); err != core.ErrCredentialTaken {
		t.Fatalf("expected ErrCredentialTaken, got %v", err)
	}
	dupWey := &core.User{ID: "u3", Name: "Eve", Credential: "wey_c", WeyID: "AAAA1111", CreatedAt: time.Now()}
	if err := repo.Create(ctx, dupWey); err != core.ErrWeyIDTaken {
		t.Fatalf("expected ErrWeyIDTaken, got %v", err)
	}

	got, err := repo.ByWeyID(ctx, "AAAA1111")
	if err != nil || got == nil {
		t.Fatalf("ByWeyID = %v, %v", got, err)
	}
	if got.Name != "Ada" || !got.MonthlyTarget.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("user round trip wrong: %+v", got)
	}

	missing, err := repo.ByCredential(ctx, "wey_nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", missing, err)
	}
}

func TestRepositoryTransactions(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, amount := range []string{"10.50", "20", "30.25"} {
		tx := &core.Transaction{
			ID: string(rune('a' + i)), UserID: "u1",
			Type: core.Expense, Category: "food",
			Amount:    decimal.RequireFromString(amount),
			Date:      base.AddDate(0, 0, i),
			CreatedAt: time.Now(),
		}
		if err := repo.Insert(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}
	if list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("not date descending: %v", list)
	}
	// TEXT storage must round trip the exact decimal representation.
	if !list[2].Amount.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("amount round trip = %s", list[2].Amount)
	}
	if !list[2].Date.Equal(base) {
		t.Fatalf("date round trip = %v, want %v", list[2].Date, base)
	}

	limited, err := repo.ListByUser(ctx, "u1", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited list = %v, %v", limited, err)
	}

	// Range bounds are inclusive on both ends.
	ranged, err := repo.ListByRange(ctx, "u1", base, base.AddDate(0, 0, 1))
	if err != nil || len(ranged) != 2 {
		t.Fatalf("ranged list = %v, %v", ranged, err)
	}

	if err := repo.Delete(ctx, "a", "wrong-owner"); err != nil {
		t.Fatalf("delete wrong owner: %v", err)
	}
	list, _ = repo.ListByUser(ctx, "u1", 0)
	if len(list) != 3 {
		t.Fatal("delete with wrong owner removed a row")
	}
	if err := repo.Delete(ctx, "a", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = repo.ListByUser(ctx, "u1", 0)
	if len(list) != 2 {
		t.Fatal("row still present after delete")
	}
}

func TestRepositoryContactsAndMessages(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	c := &core.Contact{ID: "c1", OwnerID: "u1", WeyID: "BBBB2222", Name: "Bob", CreatedAt: time.Now()}
	if err := repo.AddContact(ctx, c); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	dup := &core.Contact{ID: "c2", OwnerID: "u1", WeyID: "BBBB2222", Name: "Bobby", CreatedAt: time.Now()}
	if err := repo.AddContact(ctx, dup); err != core.ErrDuplicateContact {
		t.Fatalf("expected ErrDuplicateContact, got %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	send := func(id, from, toWey string, minute int) {
		t.Helper()
		err := repo.AddMessage(ctx, &core.Message{
			ID: id, FromID: from, ToWeyID: toWey, Content: "hello",
			Kind: core.KindText, CreatedAt: base.Add(time.Duration(minute) * time.Minute),
		})
		if err != nil {
			t.Fatalf("add message: %v", err)
		}
	}
	send("m1", "u1", "BBBB2222", 1)
	send("m2", "u2", "AAAA1111", 2)
	send("m3", "u3", "AAAA1111", 3) // different peer

	conv, err := repo.Conversation(ctx, "u1", "AAAA1111", "u2", "BBBB2222", 0)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(conv) != 2 || conv[0].ID != "m2" || conv[1].ID != "m1" {
		t.Fatalf("conversation wrong: %v", conv)
	}

	n, err := repo.UnreadCount(ctx, "AAAA1111", "u2")
	if err != nil || n != 1 {
		t.Fatalf("unread = %d, %v", n, err)
	}
	flipped, err := repo.MarkRead(ctx, "AAAA1111", "u2")
	if err != nil || flipped != 1 {
		t.Fatalf("mark read = %d, %v", flipped, err)
	}
	// The other peer's message is untouched.
	n, _ = repo.UnreadCount(ctx, "AAAA1111", "u3")
	if n != 1 {
		t.Fatal("unrelated message was marked read")
	}
}

func TestRepositoryBroadcast(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"b1", "b2", "b3"} {
		err := repo.AddBroadcast(ctx, &core.BroadcastMessage{
			ID: id, FromID: "u1", Content: "news",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("add broadcast: %v", err)
		}
	}

	got, err := repo.ListBroadcast(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b3" || got[1].ID != "b2" {
		t.Fatalf("broadcasts wrong: %v", got)
	}
}

func TestTimeFormatSortsLexicographically(t *testing.T) {
	// Fractional seconds are fixed width so string order equals time order.
	early := formatTime(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	late := formatTime(time.Date(2025, 6, 1, 10, 0, 0, 500000000, time.UTC))
	if !(early < late) {
		t.Fatalf("expected %q < %q", early, late)
	}
	if len(early) != len(late) {
		t.Fatalf("formats differ in width: %q vs %q", early, late)
	}
}
