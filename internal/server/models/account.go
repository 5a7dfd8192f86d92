// Package models contains server-side entity definitions for picshare.
package models

// Identity is the identity provider's record of a signed-in caller. The
// fields come either from ID-token claims or from the token introspection
// response; which of them is populated depends on the token kind.
type Identity struct {
	Email  string
	UserID string
}

// Equal compares two identities. Provider user IDs are authoritative when
// both sides carry one; otherwise the comparison falls back to email.
func (i Identity) Equal(other Identity) bool {
	if i.UserID != "" && other.UserID != "" {
		return i.UserID == other.UserID
	}
	return i.Email != "" && i.Email == other.Email
}

func (i Identity) IsZero() bool {
	return i.Email == "" && i.UserID == ""
}

// Account maps an identity provider subject ID to an application user.
//
// An account with a nil Identity is a placeholder: it was created only to
// hold ACL membership for a user who has not signed up yet. The identity is
// set exactly once, when its owner signs up, and never changes afterwards.
type Account struct {
	SubjectID string
	Identity  *Identity

	// ACLMembership lists subject IDs of users who have shared at least one
	// photo with this account. It is a set; order carries no meaning.
	ACLMembership []string
}

// Placeholder reports whether the account is an ACL stub without a
// signed-up owner.
func (a *Account) Placeholder() bool {
	return a.Identity == nil
}
