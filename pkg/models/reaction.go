package models

// Reaction target types.
const (
	TargetMessage = "message"
	TargetPost    = "post"
	TargetAsset   = "asset"
)

// ReactionTargets lists the accepted values for Reaction.TargetType.
var ReactionTargets = []string{TargetMessage, TargetPost, TargetAsset}

// Reaction marks actor interest in a target. At most one reaction exists
// per (actor, target_type, target_id) tuple; existence itself encodes
// "liked", there is no boolean to desynchronize.
type Reaction struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	CreatedTS  int64  `json:"created_at"`
}

// ValidTarget reports whether t is a known reaction target type.
func ValidTarget(t string) bool {
	for _, v := range ReactionTargets {
		if v == t {
			return true
		}
	}
	return false
}
