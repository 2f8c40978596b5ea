// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import "fmt"

// Quality indicates how far a candidate external IP address has progressed
// through its lifecycle, from a source that hasn't been queried yet up to an
// address that has been answered and optionally verified for reachability.
type Quality int

// The lifecycle qualities of a candidate address.
const (
	Pending     Quality = iota // source not yet queried.
	Querying                   // source query in flight.
	Failed                     // source query failed, no address.
	Answered                   // source answered with an address.
	Verifying                  // answered address in reachability verification.
	Unreachable                // answered address failed verification.
	Verified                   // answered address successfully verified.
)

// String returns the clear-text representation of a Quality value.
func (q Quality) String() string {
	switch q {
	case Pending:
		return "pending"
	case Querying:
		return "querying"
	case Failed:
		return "failed"
	case Answered:
		return "answered"
	case Verifying:
		return "verifying"
	case Unreachable:
		return "unreachable"
	case Verified:
		return "verified"
	}
	return fmt.Sprintf("Quality(%d)", q)
}

// IsPending returns true as long as a source query or a verification is still
// in flight or hasn't even started yet.
func (q Quality) IsPending() bool {
	switch q {
	case Pending, Querying, Verifying:
		return true
	default:
		return false
	}
}
