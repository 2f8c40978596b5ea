// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/pflag"
)

// Source is an independent probe capable of producing a candidate external IP
// address. Sources are immutable after construction and safe to query
// concurrently from multiple resolution attempts.
type Source interface {
	fmt.Stringer
	// Query asks the source for the host's external IP address, restricted
	// to the specified address family. A source that cannot satisfy the
	// requested family must fail with [ErrUnsupportedFamily] instead of
	// returning a mismatched address.
	Query(ctx context.Context, family Family) (net.IP, error)
}

// Family expresses the IP address family a caller accepts and a source can
// supply.
type Family int

var _ pflag.Value = (*Family)(nil)

// The address families; the zero value accepts any family.
const (
	FamilyAny Family = iota
	FamilyIPv4
	FamilyIPv6
)

// String returns the clear-text representation of a Family value.
func (f Family) String() string {
	switch f {
	case FamilyAny:
		return "any"
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Set parses a family name; it implements [github.com/spf13/pflag.Value] so
// a Family can directly serve as a CLI flag.
func (f *Family) Set(s string) error {
	switch strings.ToLower(s) {
	case "any", "all":
		*f = FamilyAny
	case "ipv4", "4":
		*f = FamilyIPv4
	case "ipv6", "6":
		*f = FamilyIPv6
	default:
		return fmt.Errorf("unknown address family %q (expected any, ipv4, or ipv6)", s)
	}
	return nil
}

// Type returns the flag value type name.
func (f Family) Type() string { return "family" }

// Matches returns true if the specified IP address belongs to this family;
// FamilyAny matches every address.
func (f Family) Matches(ip net.IP) bool {
	switch f {
	case FamilyIPv4:
		return ip.To4() != nil
	case FamilyIPv6:
		return ip.To4() == nil && ip.To16() != nil
	}
	return true
}

// covers returns true if a source supporting family f can satisfy a query
// for the requested family.
func (f Family) covers(requested Family) bool {
	return f == FamilyAny || requested == FamilyAny || f == requested
}
