package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestHistoryResolvesIsFromMe(t *testing.T) {
	s := newTestStore(t)
	svc := NewChatService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	if _, err := svc.SaveDirect(ctx, alice.ID, bob.ID, "hi bob", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveDirect(ctx, bob.ID, alice.ID, "hi alice", ""); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, alice.ID, bob.ID, 1, 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Data) != 2 {
		t.Fatalf("got %d messages, want 2", len(history.Data))
	}
	if !history.Data[0].IsFromMe || history.Data[1].IsFromMe {
		t.Errorf("isFromMe flags wrong: %+v", history.Data)
	}
	if history.Data[0].SenderName != "alice test" {
		t.Errorf("sender name = %q, want alice test", history.Data[0].SenderName)
	}

	// Same history from bob's side flips the flags.
	history, err = svc.History(ctx, bob.ID, alice.ID, 1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if history.Data[0].IsFromMe || !history.Data[1].IsFromMe {
		t.Errorf("bob's isFromMe flags wrong: %+v", history.Data)
	}
}

func TestHistoryTotalPages(t *testing.T) {
	s := newTestStore(t)
	svc := NewChatService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	for i := 0; i < 7; i++ {
		if _, err := svc.SaveDirect(ctx, alice.ID, bob.ID, fmt.Sprintf("m%d", i), ""); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.History(ctx, alice.ID, bob.ID, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if history.Total != 7 || history.TotalPages != 3 {
		t.Errorf("total %d pages %d, want 7/3", history.Total, history.TotalPages)
	}
}

func TestSaveDirectRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	svc := NewChatService(s)
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	if _, err := svc.SaveDirect(context.Background(), alice.ID, bob.ID, "", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty message: got %v", err)
	}
	// An image-only message is fine.
	if _, err := svc.SaveDirect(context.Background(), alice.ID, bob.ID, "", "/uploads/cat.png"); err != nil {
		t.Fatalf("image-only: %v", err)
	}
}

func TestMarkReadFlowsIntoConversations(t *testing.T) {
	s := newTestStore(t)
	svc := NewChatService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	for i := 0; i < 2; i++ {
		if _, err := svc.SaveDirect(ctx, alice.ID, bob.ID, "ping", ""); err != nil {
			t.Fatal(err)
		}
	}

	convs, err := svc.Conversations(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 || convs[0].UnreadCount != 2 {
		t.Fatalf("before read: %+v", convs)
	}

	n, err := svc.MarkRead(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("marked %d, want 2", n)
	}

	convs, err = svc.Conversations(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if convs[0].UnreadCount != 0 {
		t.Errorf("after read unread = %d, want 0", convs[0].UnreadCount)
	}
}
