package acl

import "strings"

// Record identifies one user known to the gate.
type Record struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns the username when set, otherwise the first and last
// names joined. This is the literal offered on admin reply keyboards.
func (r Record) DisplayName() string {
	if r.Username != "" {
		return r.Username
	}
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return "unknown"
	}
	return name
}

// KeyboardValue returns the literal echoed back when an admin picks this
// user from a reply keyboard. Two users can share a display name; the
// resolver's first-match rule decides those ties.
func (r Record) KeyboardValue() string { return r.DisplayName() }
