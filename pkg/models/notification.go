package models

// Notification types. The set is closed: every notification is produced by
// one of the typed constructors in pkg/notify, each filling only the fields
// its type needs.
const (
	NotifyLike        = "like"
	NotifyBuy         = "buy"
	NotifySell        = "sell"
	NotifyChat        = "chat"
	NotifyPostCreated = "post_created"
	NotifyNFTListed   = "nft_listed"
)

// NotificationTypes lists the accepted values for Notification.Type.
var NotificationTypes = []string{
	NotifyLike, NotifyBuy, NotifySell, NotifyChat, NotifyPostCreated, NotifyNFTListed,
}

// Notification is a recipient-addressed event record produced by a domain
// action. Unlike messages, notifications may be hard-deleted by their
// recipient.
type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	// From is the identity that triggered the event; set for like and chat.
	From string `json:"from_identity,omitempty"`
	// AssetID is set for buy, sell, nft_listed and asset likes.
	AssetID string `json:"related_asset_id,omitempty"`
	// PostID is set for post_created and post likes.
	PostID    string `json:"related_post_id,omitempty"`
	Read      bool   `json:"is_read"`
	CreatedTS int64  `json:"created_at"`
}

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	for _, v := range NotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}
