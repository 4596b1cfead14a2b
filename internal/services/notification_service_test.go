package services

import (
	"context"
	"errors"
	"testing"

	"socialhub/wire"
)

func TestNotifyPostActivity(t *testing.T) {
	s := newTestStore(t)
	svc := NewNotificationService(s)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner")
	liker := createTestUser(t, s, "liker")

	post, err := svc.CreatePost(ctx, owner.ID, "sunset")
	if err != nil {
		t.Fatal(err)
	}

	n, recipient, err := svc.NotifyPostActivity(ctx, liker.ID, post.ID, wire.NotificationLike)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if recipient != owner.ID {
		t.Errorf("recipient = %d, want %d", recipient, owner.ID)
	}
	if n.Type != wire.NotificationLike || n.Sender.ID != liker.ID || n.Post.Title != "sunset" {
		t.Errorf("notification = %+v", n)
	}

	count, err := svc.UnreadCount(ctx, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("unread = %d, want 1", count)
	}
}

func TestOwnPostActivityIsSilent(t *testing.T) {
	s := newTestStore(t)
	svc := NewNotificationService(s)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner")

	post, err := svc.CreatePost(ctx, owner.ID, "selfie")
	if err != nil {
		t.Fatal(err)
	}

	n, _, err := svc.NotifyPostActivity(ctx, owner.ID, post.ID, wire.NotificationLike)
	if err != nil {
		t.Fatalf("notify own post: %v", err)
	}
	if n != nil {
		t.Errorf("own-post like produced notification %+v", n)
	}
}

func TestNotifyMissingPost(t *testing.T) {
	s := newTestStore(t)
	svc := NewNotificationService(s)
	liker := createTestUser(t, s, "liker")

	if _, _, err := svc.NotifyPostActivity(context.Background(), liker.ID, 404, wire.NotificationLike); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: got %v", err)
	}
}

func TestNotificationListPaging(t *testing.T) {
	s := newTestStore(t)
	svc := NewNotificationService(s)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner")
	fan := createTestUser(t, s, "fan")

	post, err := svc.CreatePost(ctx, owner.ID, "gallery")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, _, err := svc.NotifyPostActivity(ctx, fan.ID, post.ID, wire.NotificationComment); err != nil {
			t.Fatal(err)
		}
	}

	list, err := svc.List(ctx, owner.ID, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 5 || list.CurrentPage != 2 || list.LastPage != 3 {
		t.Errorf("list meta = %+v", list)
	}
	if len(list.Data) != 2 {
		t.Errorf("page len = %d, want 2", len(list.Data))
	}

	if err := svc.MarkAllRead(ctx, owner.ID); err != nil {
		t.Fatal(err)
	}
	count, _ := svc.UnreadCount(ctx, owner.ID)
	if count != 0 {
		t.Errorf("unread after read-all = %d", count)
	}
}
