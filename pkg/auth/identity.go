package auth

import (
	"net/http"
	"strings"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/validation"
)

// IdentityHeader carries the caller's wallet-derived identity. It is set
// by the caller's session layer; this service treats it as authoritative.
const IdentityHeader = "X-Identity"

// ResolveIdentity is the single canonical resolver handlers call. It reads
// the identity header, normalizes it to the canonical lowercase form and
// validates it. Returns the identity, or a non-zero HTTP status plus
// message when the request carries no usable identity.
func ResolveIdentity(r *http.Request) (string, int, string) {
	id := strings.ToLower(strings.TrimSpace(r.Header.Get(IdentityHeader)))
	if id == "" {
		// query fallback for websocket clients that cannot set headers
		id = strings.ToLower(strings.TrimSpace(r.URL.Query().Get("identity")))
	}
	if id == "" {
		return "", http.StatusUnauthorized, "missing identity"
	}
	if err := validation.ValidateIdentity(id); err != nil {
		return "", http.StatusBadRequest, err.Error()
	}
	return id, 0, ""
}
