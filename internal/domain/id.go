package domain

import "regexp"

// Account ids are caller-visible tokens: either generated UUIDs or external
// identifiers supplied at onboarding. Anything outside this shape is rejected
// at the boundary before it can reach the store.
var accountIDRegex = regexp.MustCompile(`^[A-Za-z0-9_:-]{1,64}$`)

// ValidAccountID reports whether id is a well-formed account identifier.
func ValidAccountID(id string) bool {
	return accountIDRegex.MatchString(id)
}
