package unread

import (
	"testing"
	"time"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
)

func setup(t *testing.T) *Aggregator {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewAggregator()
}

func seedConversation(t *testing.T, id, low, high string) {
	t.Helper()
	if err := store.SaveConversation(models.Conversation{ID: id, ParticipantLow: low, ParticipantHigh: high}); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}
}

func seedMessage(t *testing.T, id, conv, sender, recipient string, ts int64) {
	t.Helper()
	m := models.Message{ID: id, Conversation: conv, Sender: sender, Recipient: recipient, Content: "x", Kind: models.KindText, CreatedTS: ts}
	if err := store.SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
}

func TestSnapshotSplitsByConversation(t *testing.T) {
	agg := setup(t)

	seedConversation(t, "c1", "alice", "bob")
	seedConversation(t, "c2", "bob", "carol")

	seedMessage(t, "m1", "c1", "alice", "bob", 1)
	seedMessage(t, "m2", "c1", "alice", "bob", 2)
	seedMessage(t, "m3", "c2", "carol", "bob", 3)
	// bob's own outbound never counts
	seedMessage(t, "m4", "c1", "bob", "alice", 4)

	counts, err := agg.Snapshot("bob")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if counts.Messages != 3 {
		t.Fatalf("expected 3 unread messages; got %d", counts.Messages)
	}
	if counts.Conversations["c1"] != 2 || counts.Conversations["c2"] != 1 {
		t.Fatalf("wrong per-conversation split: %+v", counts.Conversations)
	}
	if counts.Total != 3 {
		t.Fatalf("expected total 3; got %d", counts.Total)
	}
}

func TestSnapshotIncludesNotifications(t *testing.T) {
	agg := setup(t)

	n := models.Notification{ID: "n1", Recipient: "bob", Type: models.NotifyLike, Title: "t", Message: "m", CreatedTS: 1}
	if err := store.SaveNotification(n); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}

	counts, err := agg.Snapshot("bob")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if counts.Notifications != 1 || counts.Total != 1 {
		t.Fatalf("expected 1 notification in totals; got %+v", counts)
	}
}

func TestSnapshotDropsAfterRead(t *testing.T) {
	agg := setup(t)

	seedConversation(t, "c1", "alice", "bob")
	seedConversation(t, "c2", "bob", "carol")
	seedMessage(t, "m1", "c1", "alice", "bob", 1)
	seedMessage(t, "m2", "c1", "alice", "bob", 2)
	seedMessage(t, "m3", "c2", "carol", "bob", 3)

	if _, err := store.MarkMessagesRead("c1", "bob"); err != nil {
		t.Fatalf("MarkMessagesRead: %v", err)
	}

	counts, err := agg.Snapshot("bob")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if counts.Messages != 1 {
		t.Fatalf("expected 1 remaining unread; got %d", counts.Messages)
	}
	if _, present := counts.Conversations["c1"]; present {
		t.Fatalf("fully read conversation must not appear: %+v", counts.Conversations)
	}

	// marking again changes nothing
	if _, err := store.MarkMessagesRead("c1", "bob"); err != nil {
		t.Fatalf("MarkMessagesRead repeat: %v", err)
	}
	again, err := agg.Snapshot("bob")
	if err != nil {
		t.Fatalf("Snapshot repeat: %v", err)
	}
	if again.Messages != counts.Messages {
		t.Fatalf("repeat mark-read changed counts: %d -> %d", counts.Messages, again.Messages)
	}
}

func TestWatchPushesFreshSnapshots(t *testing.T) {
	agg := setup(t)
	hub := live.NewHub(8, 0)

	seedConversation(t, "c1", "alice", "bob")
	seedMessage(t, "m1", "c1", "alice", "bob", 1)

	got := make(chan Counts, 1)
	r := agg.Watch(hub, "bob", func(c Counts) { got <- c })
	defer r.Close()

	// any event on the unread topic triggers a recomputation
	hub.Publish(live.UnreadTopic("bob"), struct {
		Kind string `json:"kind"`
	}{Kind: "message"})

	select {
	case c := <-got:
		if c.Messages != 1 {
			t.Fatalf("expected snapshot with 1 unread; got %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher never received a snapshot")
	}
}
