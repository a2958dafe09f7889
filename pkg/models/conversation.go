package models

// Conversation is a two-party thread keyed by the canonically ordered
// participant pair. ParticipantLow sorts lexicographically before
// ParticipantHigh, so (A,B) and (B,A) always resolve to the same record.
type Conversation struct {
	ID              string `json:"id"`
	ParticipantLow  string `json:"participant_low"`
	ParticipantHigh string `json:"participant_high"`
	// LastMessage is a denormalized copy of the newest message content,
	// updated after each send. It may lag the message list briefly; the
	// next send repairs it.
	LastMessage   string `json:"last_message,omitempty"`
	LastMessageTS int64  `json:"last_message_at"`
	CreatedTS     int64  `json:"created_ts,omitempty"`
}

// Other returns the participant that is not identity. Identity must already
// be lowercased.
func (c Conversation) Other(identity string) string {
	if c.ParticipantLow == identity {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}

// Has reports whether identity is one of the two participants.
func (c Conversation) Has(identity string) bool {
	return c.ParticipantLow == identity || c.ParticipantHigh == identity
}

// ConversationSummary is a Conversation annotated for one viewer: the other
// participant and the viewer's unread count.
type ConversationSummary struct {
	Conversation
	Participant string `json:"participant"`
	Unread      int    `json:"unread"`
	// LastMessageAgo is a display form of LastMessageTS ("5m ago").
	LastMessageAgo string `json:"last_message_ago,omitempty"`
}
