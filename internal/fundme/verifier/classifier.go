package verifier

import "strings"

// Classifier reports whether a verification error means the contract was
// verified before.
type Classifier func(err error) bool

const alreadyVerifiedMarker = "already verified"

// AlreadyVerified matches "already verified" in any letter case.
func AlreadyVerified(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), alreadyVerifiedMarker)
}
