package conversations

import (
	"testing"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/unread"
)

func setup(t *testing.T) *Manager {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(unread.NewAggregator())
}

func TestCanonicalPairOrdersAndLowercases(t *testing.T) {
	low, high := CanonicalPair("Bob", " alice ")
	if low != "alice" || high != "bob" {
		t.Fatalf("expected alice/bob; got %s/%s", low, high)
	}
	low2, high2 := CanonicalPair("alice", "bob")
	if low != low2 || high != high2 {
		t.Fatalf("pair is not order independent")
	}
}

func TestGetOrCreateIsDirectionless(t *testing.T) {
	m := setup(t)

	c1, err := m.GetOrCreate("alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	c2, err := m.GetOrCreate("Bob", "Alice")
	if err != nil {
		t.Fatalf("GetOrCreate reversed: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("expected the same conversation both directions; got %s vs %s", c1.ID, c2.ID)
	}
	if c1.ParticipantLow != "alice" || c1.ParticipantHigh != "bob" {
		t.Fatalf("participants not canonical: %+v", c1)
	}
}

func TestGetOrCreateRejectsInvalidIdentity(t *testing.T) {
	m := setup(t)

	if _, err := m.GetOrCreate("", "bob"); err == nil {
		t.Fatalf("expected error for empty identity")
	}
	if _, err := m.GetOrCreate("al:ice", "bob"); err == nil {
		t.Fatalf("expected error for identity with colon")
	}
}

func TestUpdateSummaryGuardsAgainstStaleWrites(t *testing.T) {
	m := setup(t)

	c, err := m.GetOrCreate("alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := m.UpdateSummary(c.ID, "newer", 2000); err != nil {
		t.Fatalf("UpdateSummary: %v", err)
	}
	// a delayed writer with an older timestamp must not clobber
	if err := m.UpdateSummary(c.ID, "older", 1000); err != nil {
		t.Fatalf("UpdateSummary stale: %v", err)
	}
	got, err := m.Get(c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastMessage != "newer" || got.LastMessageTS != 2000 {
		t.Fatalf("stale write clobbered summary: %+v", got)
	}
}

func TestListForUserOrdersByActivity(t *testing.T) {
	m := setup(t)
	m.nowNs = func() int64 { return 1 }

	cb, err := m.GetOrCreate("alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreate bob: %v", err)
	}
	cc, err := m.GetOrCreate("alice", "carol")
	if err != nil {
		t.Fatalf("GetOrCreate carol: %v", err)
	}

	if err := m.UpdateSummary(cb.ID, "from bob", 100); err != nil {
		t.Fatalf("UpdateSummary bob: %v", err)
	}
	if err := m.UpdateSummary(cc.ID, "from carol", 200); err != nil {
		t.Fatalf("UpdateSummary carol: %v", err)
	}

	out, err := m.ListForUser("Alice")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 conversations; got %d", len(out))
	}
	if out[0].ID != cc.ID {
		t.Fatalf("expected carol conversation first; got %s", out[0].ID)
	}
	if out[0].Participant != "carol" || out[1].Participant != "bob" {
		t.Fatalf("wrong other-participant annotation: %s, %s", out[0].Participant, out[1].Participant)
	}
	if out[0].LastMessageAgo == "" {
		t.Fatalf("expected relative time annotation")
	}
}
