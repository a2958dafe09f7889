// Package validation checks records at the service boundary. Each entity
// has one total validator covering every field of its schema; there is no
// partially validated state.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/models"
)

const (
	maxContentLen  = 4096
	maxIdentityLen = 128
	maxTargetIDLen = 128
	maxTitleLen    = 256
)

// Identities are opaque lowercase wallet addresses. Target ids are opaque
// content-store ids. Both end up embedded in store keys, so the charset
// excludes the key separators (':' and '|').
var (
	identityRe = regexp.MustCompile(`^[a-z0-9._-]+$`)
	targetIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ValidateIdentity checks a wallet address string. Callers lowercase
// before validating.
func ValidateIdentity(id string) error {
	if id == "" {
		return errors.New("identity is required")
	}
	if len(id) > maxIdentityLen {
		return fmt.Errorf("identity exceeds %d chars", maxIdentityLen)
	}
	if !identityRe.MatchString(id) {
		return errors.New("identity contains invalid characters")
	}
	return nil
}

// ValidateTargetID checks an opaque reaction/notification target id.
func ValidateTargetID(id string) error {
	if id == "" {
		return errors.New("target id is required")
	}
	if len(id) > maxTargetIDLen {
		return fmt.Errorf("target id exceeds %d chars", maxTargetIDLen)
	}
	if !targetIDRe.MatchString(id) {
		return errors.New("target id contains invalid characters")
	}
	return nil
}

func sendFieldErrs(sender, recipient, content, kind string) []string {
	var errs []string
	if err := ValidateIdentity(sender); err != nil {
		errs = append(errs, "sender: "+err.Error())
	}
	if err := ValidateIdentity(recipient); err != nil {
		errs = append(errs, "recipient: "+err.Error())
	}
	if content == "" {
		errs = append(errs, "content is required")
	}
	if len(content) > maxContentLen {
		errs = append(errs, fmt.Sprintf("content exceeds %d chars", maxContentLen))
	}
	if !models.ValidKind(kind) {
		errs = append(errs, fmt.Sprintf("unknown kind %q", kind))
	}
	return errs
}

// ValidateSend checks the caller-supplied send fields. It runs before the
// conversation is resolved, so a rejected send creates nothing.
func ValidateSend(sender, recipient, content, kind string) error {
	if errs := sendFieldErrs(sender, recipient, content, kind); len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateMessage checks a message before persistence.
func ValidateMessage(m models.Message) error {
	errs := sendFieldErrs(m.Sender, m.Recipient, m.Content, m.Kind)
	if m.Conversation == "" {
		errs = append(errs, "conversation_id is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateNotification checks a notification before persistence.
func ValidateNotification(n models.Notification) error {
	var errs []string
	if err := ValidateIdentity(n.Recipient); err != nil {
		errs = append(errs, "recipient: "+err.Error())
	}
	if !models.ValidNotificationType(n.Type) {
		errs = append(errs, fmt.Sprintf("unknown type %q", n.Type))
	}
	if n.Title == "" {
		errs = append(errs, "title is required")
	}
	if len(n.Title) > maxTitleLen {
		errs = append(errs, fmt.Sprintf("title exceeds %d chars", maxTitleLen))
	}
	if len(n.Message) > maxContentLen {
		errs = append(errs, fmt.Sprintf("message exceeds %d chars", maxContentLen))
	}
	if n.From != "" {
		if err := ValidateIdentity(n.From); err != nil {
			errs = append(errs, "from_identity: "+err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateReaction checks a reaction tuple.
func ValidateReaction(r models.Reaction) error {
	var errs []string
	if err := ValidateIdentity(r.Actor); err != nil {
		errs = append(errs, "actor: "+err.Error())
	}
	if !models.ValidTarget(r.TargetType) {
		errs = append(errs, fmt.Sprintf("unknown target type %q", r.TargetType))
	}
	if err := ValidateTargetID(r.TargetID); err != nil {
		errs = append(errs, "target_id: "+err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
