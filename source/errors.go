// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import "errors"

// The failure conditions a source may signal; all of them are terminal for a
// single query attempt, sources never retry on their own. Transport-level
// failures are not sentinels but instead wrap their underlying cause.
var (
	// ErrUnsupportedFamily signals that the requested address family is not
	// one the queried source can satisfy.
	ErrUnsupportedFamily = errors.New("address family not supported by this source")

	// ErrInvalidAddress signals a response that cannot be parsed as an IP
	// address.
	ErrInvalidAddress = errors.New("response is not a valid IP address")

	// ErrNoRecord signals that a resolution succeeded on the wire but
	// yielded no usable address record.
	ErrNoRecord = errors.New("resolution yielded no usable address record")

	// ErrNoGateway signals that no local gateway device could be discovered
	// to ask for its external address.
	ErrNoGateway = errors.New("no gateway device discovered")
)
