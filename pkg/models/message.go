package models

// Message kinds. AssetRef and TradeRef messages carry an opaque id in
// Content instead of free text.
const (
	KindText     = "text"
	KindAssetRef = "asset_ref"
	KindTradeRef = "trade_ref"
)

// MessageKinds lists the accepted values for Message.Kind.
var MessageKinds = []string{KindText, KindAssetRef, KindTradeRef}

// Message is one unit of content within a Conversation. Sender and Content
// are immutable after creation; Read only ever flips false to true.
type Message struct {
	ID           string `json:"id"`
	Conversation string `json:"conversation_id"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Content      string `json:"content"`
	Kind         string `json:"kind"`
	CreatedTS    int64  `json:"created_at"`
	Read         bool   `json:"is_read"`
}

// ValidKind reports whether k is a known message kind.
func ValidKind(k string) bool {
	for _, v := range MessageKinds {
		if v == k {
			return true
		}
	}
	return false
}
