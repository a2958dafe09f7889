package validation

import (
	"strings"
	"testing"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
)

func TestValidateIdentity(t *testing.T) {
	for _, id := range []string{"alice", "0x1a2b.c_d-e", "bob.eth"} {
		if err := ValidateIdentity(id); err != nil {
			t.Fatalf("expected %q valid: %v", id, err)
		}
	}
	// the charset excludes key separators and uppercase
	for _, id := range []string{"", "Alice", "a:b", "a|b", "a b", strings.Repeat("x", 129)} {
		if err := ValidateIdentity(id); err == nil {
			t.Fatalf("expected %q invalid", id)
		}
	}
}

func TestValidateTargetID(t *testing.T) {
	if err := ValidateTargetID("Post-123.v2"); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	for _, id := range []string{"", "p:1", "p|1", strings.Repeat("x", 129)} {
		if err := ValidateTargetID(id); err == nil {
			t.Fatalf("expected %q invalid", id)
		}
	}
}

func TestValidateMessageJoinsAllErrors(t *testing.T) {
	err := ValidateMessage(models.Message{Kind: "bogus"})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"sender", "recipient", "conversation_id", "content", "kind"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error; got %s", want, msg)
		}
	}

	ok := models.Message{ID: "m1", Conversation: "c1", Sender: "alice", Recipient: "bob", Content: "hi", Kind: models.KindText}
	if err := ValidateMessage(ok); err != nil {
		t.Fatalf("expected valid message: %v", err)
	}
}

func TestValidateSend(t *testing.T) {
	if err := ValidateSend("alice", "bob", "hi", models.KindText); err != nil {
		t.Fatalf("expected valid send: %v", err)
	}
	for _, c := range []struct {
		sender, recipient, content, kind string
	}{
		{"", "bob", "hi", models.KindText},
		{"alice", "", "hi", models.KindText},
		{"alice", "bob", "", models.KindText},
		{"alice", "bob", "hi", "bogus"},
	} {
		if err := ValidateSend(c.sender, c.recipient, c.content, c.kind); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
}

func TestValidateMessageContentBound(t *testing.T) {
	m := models.Message{ID: "m1", Conversation: "c1", Sender: "alice", Recipient: "bob", Kind: models.KindText}
	m.Content = strings.Repeat("x", 4096)
	if err := ValidateMessage(m); err != nil {
		t.Fatalf("content at the bound should pass: %v", err)
	}
	m.Content = strings.Repeat("x", 4097)
	if err := ValidateMessage(m); err == nil {
		t.Fatalf("content over the bound should fail")
	}
}

func TestValidateNotification(t *testing.T) {
	n := models.Notification{Recipient: "bob", Type: models.NotifyLike, Title: "New Like", From: "alice"}
	if err := ValidateNotification(n); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	n.Type = "bogus"
	if err := ValidateNotification(n); err == nil {
		t.Fatalf("expected unknown type rejected")
	}
	n.Type = models.NotifyLike
	n.Title = ""
	if err := ValidateNotification(n); err == nil {
		t.Fatalf("expected missing title rejected")
	}
}

func TestValidateReaction(t *testing.T) {
	r := models.Reaction{Actor: "alice", TargetType: models.TargetPost, TargetID: "p1"}
	if err := ValidateReaction(r); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	r.TargetType = "bogus"
	if err := ValidateReaction(r); err == nil {
		t.Fatalf("expected unknown target type rejected")
	}
}
