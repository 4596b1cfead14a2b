package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/store/sqlstore"
	"socialhub/wire"
)

func newTestStore(t *testing.T) *sqlstore.SQLStore {
	t.Helper()
	s, err := sqlstore.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *sqlstore.SQLStore, name string) *models.User {
	t.Helper()
	u := &models.User{
		FirstName:    name,
		LastName:     "test",
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestSendRequestStateMachine(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	if _, err := svc.SendRequest(ctx, alice.ID, alice.ID); !errors.Is(err, ErrSelfRequest) {
		t.Fatalf("self request: got %v", err)
	}

	f, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	if f.Status != wire.FriendshipPending {
		t.Errorf("status = %q, want pending", f.Status)
	}

	// Duplicate while pending, from either side.
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); !errors.Is(err, ErrRequestExists) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := svc.SendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrRequestExists) {
		t.Errorf("reverse duplicate: got %v", err)
	}

	if _, err := svc.Respond(ctx, bob.ID, f.ID, "accept"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("request after accept: got %v", err)
	}
}

func TestRejectedEdgeAllowsRetry(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	f, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Respond(ctx, bob.ID, f.ID, "reject"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// A rejected edge is replaced by a fresh pending one.
	f2, err := svc.SendRequest(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("retry after reject: %v", err)
	}
	if f2.ID == f.ID {
		t.Error("retry reused the rejected edge")
	}
	if f2.Status != wire.FriendshipPending {
		t.Errorf("retry status = %q, want pending", f2.Status)
	}
}

func TestRespondGuards(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	f, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}

	// The requester cannot accept their own request.
	if _, err := svc.Respond(ctx, alice.ID, f.ID, "accept"); !errors.Is(err, ErrNotAddressee) {
		t.Errorf("requester accept: got %v", err)
	}
	if _, err := svc.Respond(ctx, bob.ID, f.ID, "maybe"); !errors.Is(err, ErrBadAction) {
		t.Errorf("bad action: got %v", err)
	}
	if _, err := svc.Respond(ctx, bob.ID, 9999, "accept"); !errors.Is(err, ErrFriendshipGone) {
		t.Errorf("missing friendship: got %v", err)
	}

	if _, err := svc.Respond(ctx, bob.ID, f.ID, "accept"); err != nil {
		t.Fatal(err)
	}
	// Responding twice fails.
	if _, err := svc.Respond(ctx, bob.ID, f.ID, "accept"); !errors.Is(err, ErrNotPending) {
		t.Errorf("double respond: got %v", err)
	}
}

func TestUnfriendRequiresAcceptedEdge(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	if _, err := svc.Unfriend(ctx, alice.ID, bob.ID); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("unfriend stranger: got %v", err)
	}

	f, _ := svc.SendRequest(ctx, alice.ID, bob.ID)
	if _, err := svc.Unfriend(ctx, alice.ID, bob.ID); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("unfriend pending: got %v", err)
	}

	if _, err := svc.Respond(ctx, bob.ID, f.ID, "accept"); err != nil {
		t.Fatal(err)
	}
	removed, err := svc.Unfriend(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("unfriend: %v", err)
	}
	if removed.ID != f.ID {
		t.Errorf("removed edge %d, want %d", removed.ID, f.ID)
	}

	status, err := svc.Status(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != wire.FriendshipNone {
		t.Errorf("status after unfriend = %q, want none", status.Status)
	}
}

func TestBlockOverridesAnyState(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	// Block with no prior edge.
	if _, err := svc.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.SendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrBlocked) {
		t.Errorf("request to blocker: got %v", err)
	}

	status, err := svc.Status(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != wire.FriendshipBlocked {
		t.Errorf("status = %q, want blocked", status.Status)
	}
}

func TestStatusReportsRequesterSide(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	fromAlice, _ := svc.Status(ctx, alice.ID, bob.ID)
	if !fromAlice.Requester {
		t.Error("alice should be the requester")
	}
	fromBob, _ := svc.Status(ctx, bob.ID, alice.ID)
	if fromBob.Requester {
		t.Error("bob should not be the requester")
	}
}

func TestPendingListsOnlyIncoming(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")
	carol := createTestUser(t, s, "carol")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendRequest(ctx, bob.ID, carol.ID); err != nil {
		t.Fatal(err)
	}

	pending, err := svc.Pending(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Requester.ID != alice.ID {
		t.Fatalf("pending for bob = %v, want one from alice", pending)
	}
}
