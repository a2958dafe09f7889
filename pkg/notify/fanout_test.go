package notify

import (
	"testing"
	"time"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
)

func setup(t *testing.T) (*Fanout, *live.Hub) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	hub := live.NewHub(8, 0)
	return NewFanout(hub), hub
}

func TestEmitPersistsAndPushes(t *testing.T) {
	f, _ := setup(t)

	got := make(chan models.Notification, 1)
	sub := f.Subscribe("bob", func(n models.Notification) { got <- n })
	defer sub.Cancel()

	n, err := f.Emit("Bob", models.NotifyLike, "New Like", "alice liked your post", Options{From: "alice", PostID: "p1"})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if n.Recipient != "bob" {
		t.Fatalf("recipient not normalized: %s", n.Recipient)
	}
	if n.Read {
		t.Fatalf("new notification must start unread")
	}

	select {
	case pushed := <-got:
		if pushed.ID != n.ID {
			t.Fatalf("pushed notification mismatch: %+v", pushed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never pushed")
	}

	stored, err := store.ListNotifications("bob")
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != n.ID {
		t.Fatalf("notification not persisted: %+v", stored)
	}
}

func TestEmitRejectsInvalid(t *testing.T) {
	f, _ := setup(t)

	if _, err := f.Emit("bob", "bogus", "t", "m", Options{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, err := f.Emit("", models.NotifyLike, "t", "m", Options{}); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
	if _, err := f.Emit("bob", models.NotifyLike, "", "m", Options{}); err == nil {
		t.Fatalf("expected error for empty title")
	}
}

func TestEmitPublishesUnreadInvalidation(t *testing.T) {
	f, hub := setup(t)

	got := make(chan []byte, 1)
	sub := hub.Subscribe(live.UnreadTopic("bob"), func(p []byte) { got <- p })
	defer sub.Cancel()

	if _, err := f.Emit("bob", models.NotifySell, "Item Sold", "sold", Options{AssetID: "a1"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatalf("unread invalidation never published")
	}
}

func TestLikeSuppressesSelfAndEmptyOwner(t *testing.T) {
	f, _ := setup(t)

	f.Like("alice", "alice", models.TargetPost, "p1")
	f.Like("", "alice", models.TargetPost, "p1")

	ns, err := store.ListNotifications("alice")
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(ns) != 0 {
		t.Fatalf("self-like must not notify; got %d", len(ns))
	}
}

func TestLikeRoutesTargetIdByType(t *testing.T) {
	f, _ := setup(t)

	f.Like("bob", "alice", models.TargetAsset, "a1")
	f.Like("bob", "alice", models.TargetPost, "p1")

	ns, err := store.ListNotifications("bob")
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notifications; got %d", len(ns))
	}
	// newest first: post like, then asset like
	if ns[0].PostID != "p1" || ns[0].AssetID != "" {
		t.Fatalf("post like routed wrong: %+v", ns[0])
	}
	if ns[1].AssetID != "a1" || ns[1].PostID != "" {
		t.Fatalf("asset like routed wrong: %+v", ns[1])
	}
}

func TestMarkAllReadReportsFlips(t *testing.T) {
	f, _ := setup(t)

	f.Buy("bob", "a1")
	f.Sell("bob", "a2")

	ns, err := f.List("bob", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notifications; got %d", len(ns))
	}

	if err := f.MarkRead(ns[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	flipped, err := f.MarkAllRead("bob")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 remaining flip; got %d", flipped)
	}
}

func TestDeleteRemovesNotification(t *testing.T) {
	f, _ := setup(t)

	f.PostCreated("bob", "p1")
	ns, err := f.List("bob", 0)
	if err != nil || len(ns) != 1 {
		t.Fatalf("List: %v, %d", err, len(ns))
	}
	if err := f.Delete(ns[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ns, err = f.List("bob", 0)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(ns) != 0 {
		t.Fatalf("expected empty list; got %d", len(ns))
	}
}
