package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/wire"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLStore, first, last string) *models.User {
	t.Helper()
	u := &models.User{
		FirstName:    first,
		LastName:     last,
		Email:        fmt.Sprintf("%s.%s@example.com", first, last),
		PasswordHash: "x",
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{FirstName: "a", LastName: "b", Email: "dup@example.com", PasswordHash: "x"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.CreateUser(ctx, &models.User{FirstName: "c", LastName: "d", Email: "dup@example.com", PasswordHash: "x"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUserByID(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectHistoryPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice", "a")
	bob := createTestUser(t, s, "bob", "b")

	for i := 1; i <= 5; i++ {
		m := &models.DirectMessage{SenderID: alice.ID, RecipientID: bob.ID, Content: fmt.Sprintf("msg %d", i)}
		if err := s.SaveDirectMessage(ctx, m); err != nil {
			t.Fatalf("save message %d: %v", i, err)
		}
	}

	page1, total, err := s.GetDirectHistory(ctx, bob.ID, alice.ID, 1, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page1) != 2 {
		t.Fatalf("page len = %d, want 2", len(page1))
	}
	// Page 1 holds the two newest messages, chronological within the page.
	if page1[0].Content != "msg 4" || page1[1].Content != "msg 5" {
		t.Errorf("page1 = %q, %q; want msg 4, msg 5", page1[0].Content, page1[1].Content)
	}

	page3, _, err := s.GetDirectHistory(ctx, bob.ID, alice.ID, 3, 2)
	if err != nil {
		t.Fatalf("history page 3: %v", err)
	}
	if len(page3) != 1 || page3[0].Content != "msg 1" {
		t.Errorf("page3 = %v, want single msg 1", page3)
	}
}

func TestMarkDirectReadCountsRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice", "a")
	bob := createTestUser(t, s, "bob", "b")

	for i := 0; i < 3; i++ {
		if err := s.SaveDirectMessage(ctx, &models.DirectMessage{SenderID: alice.ID, RecipientID: bob.ID, Content: "hi"}); err != nil {
			t.Fatal(err)
		}
	}
	// A message from bob must not be flipped by bob's read.
	if err := s.SaveDirectMessage(ctx, &models.DirectMessage{SenderID: bob.ID, RecipientID: alice.ID, Content: "yo"}); err != nil {
		t.Fatal(err)
	}

	n, err := s.MarkDirectRead(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 3 {
		t.Errorf("updated = %d, want 3", n)
	}

	// Second read is a no-op.
	n, err = s.MarkDirectRead(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second read updated = %d, want 0", n)
	}
}

func TestConversationsUnreadAndLastMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice", "a")
	bob := createTestUser(t, s, "bob", "b")
	carol := createTestUser(t, s, "carol", "c")

	mustSave := func(from, to int, text string) {
		t.Helper()
		if err := s.SaveDirectMessage(ctx, &models.DirectMessage{SenderID: from, RecipientID: to, Content: text}); err != nil {
			t.Fatal(err)
		}
	}
	mustSave(bob.ID, alice.ID, "hey")
	mustSave(bob.ID, alice.ID, "you there?")
	mustSave(alice.ID, carol.ID, "hi carol")

	convs, err := s.GetConversations(ctx, alice.ID)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}

	byPeer := map[int]models.ConversationRow{}
	for _, c := range convs {
		byPeer[c.PeerID] = c
	}
	if c := byPeer[bob.ID]; c.UnreadCount != 2 || c.LastMessage != "you there?" {
		t.Errorf("bob conv = unread %d last %q, want 2 / you there?", c.UnreadCount, c.LastMessage)
	}
	// Messages alice sent do not count as unread for her.
	if c := byPeer[carol.ID]; c.UnreadCount != 0 {
		t.Errorf("carol conv unread = %d, want 0", c.UnreadCount)
	}
}

func TestFriendshipLookupIsSymmetric(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice", "a")
	bob := createTestUser(t, s, "bob", "b")

	f := &models.Friendship{RequesterID: alice.ID, AddresseeID: bob.ID, Status: wire.FriendshipPending}
	if err := s.CreateFriendship(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetFriendshipBetween(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("lookup reversed: %v", err)
	}
	if got.ID != f.ID {
		t.Errorf("got friendship %d, want %d", got.ID, f.ID)
	}
}

func TestGetFriendsSearchAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := createTestUser(t, s, "me", "x")

	names := []string{"anna", "annie", "bert"}
	for _, n := range names {
		u := createTestUser(t, s, n, "friend")
		f := &models.Friendship{RequesterID: me.ID, AddresseeID: u.ID, Status: wire.FriendshipAccepted}
		if err := s.CreateFriendship(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := s.GetFriends(ctx, me.ID, 1, 10, "ann")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("search ann: total %d rows %d, want 2/2", total, len(rows))
	}

	rows, total, err = s.GetFriends(ctx, me.ID, 2, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("page 2: total %d rows %d, want 3/1", total, len(rows))
	}
}

func TestSuggestedUsersExcludesEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := createTestUser(t, s, "me", "x")
	friend := createTestUser(t, s, "friend", "y")
	stranger := createTestUser(t, s, "stranger", "z")

	f := &models.Friendship{RequesterID: me.ID, AddresseeID: friend.ID, Status: wire.FriendshipAccepted}
	if err := s.CreateFriendship(ctx, f); err != nil {
		t.Fatal(err)
	}

	users, err := s.GetSuggestedUsers(ctx, me.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != stranger.ID {
		t.Fatalf("suggested = %v, want only stranger %d", users, stranger.ID)
	}
}

func TestNotificationsReadScopedToRecipient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner", "o")
	liker := createTestUser(t, s, "liker", "l")

	post := &models.Post{UserID: owner.ID, Title: "my post"}
	if err := s.CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}
	n := &models.Notification{RecipientID: owner.ID, SenderID: liker.ID, PostID: post.ID, Type: "like"}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatal(err)
	}

	// The sender cannot mark the recipient's notification.
	if err := s.MarkNotificationRead(ctx, liker.ID, n.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong recipient, got %v", err)
	}
	if err := s.MarkNotificationRead(ctx, owner.ID, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	count, err := s.CountUnreadNotifications(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}
}

func TestGetNotificationsJoinsSenderAndPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner", "o")
	liker := createTestUser(t, s, "liker", "l")

	post := &models.Post{UserID: owner.ID, Title: "holiday pics"}
	if err := s.CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateNotification(ctx, &models.Notification{
		RecipientID: owner.ID, SenderID: liker.ID, PostID: post.ID, Type: "comment",
	}); err != nil {
		t.Fatal(err)
	}

	rows, total, err := s.GetNotifications(ctx, owner.ID, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("total %d rows %d, want 1/1", total, len(rows))
	}
	if rows[0].Sender.FirstName != "liker" || rows[0].PostTitle != "holiday pics" {
		t.Errorf("joined row = sender %q post %q", rows[0].Sender.FirstName, rows[0].PostTitle)
	}
}
