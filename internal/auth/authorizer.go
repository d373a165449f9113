package auth

import "strings"

// Authorizer decides moderator access from the configured email allow-list
// combined with the per-user admin claim. The allow-list is injected at
// construction so tests can substitute it.
type Authorizer struct {
	allowed map[string]struct{}
}

// NewAuthorizer builds an authorizer from allow-listed emails.
func NewAuthorizer(emails []string) *Authorizer {
	allowed := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	return &Authorizer{allowed: allowed}
}

// IsAdmin reports whether the email is allow-listed (case-insensitive) or the
// identity carries the admin claim.
func (a *Authorizer) IsAdmin(email string, adminClaim bool) bool {
	if adminClaim {
		return true
	}
	_, ok := a.allowed[strings.ToLower(email)]
	return ok
}
