package domain

// ─── Identity Types ─────────────────────────────────────────────────────────

// Identity is the verified caller triple produced by the auth layer.
// The core never sees a raw token — only this.
type Identity struct {
	Subject string `json:"subject"` // stable id from the identity provider
	Name    string `json:"name"`    // display name, may be empty
	Admin   bool   `json:"admin"`
}

// Key returns the ledger identity key for this identity, or "" if it is
// unaddressable.
func (id Identity) Key() string {
	return IdentityKey(id.Subject, id.Name)
}

// IdentityKey derives the ledger addressing key from a subject id and a
// display name. A verified subject wins; a bare display name is a fallback
// kept for compatibility with clients that never signed in. Two users
// sharing a display name collide under the fallback — callers that care
// must require a subject.
func IdentityKey(subject, name string) string {
	if subject != "" {
		return "id:" + subject
	}
	if name != "" {
		return "name:" + name
	}
	return ""
}
