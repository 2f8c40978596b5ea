// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Package extip figures out the host's externally visible IP address by
// asking multiple independent, untrusted sources and forming a consensus
// over their answers. This package is the convenience facade; the building
// blocks live in the source, consensus, oneshot, and verify packages.
package extip

import (
	"context"
	"net"

	"github.com/siemens/extip/consensus"
	"github.com/siemens/extip/source"
)

// Resolve determines the external IP address using the full default source
// catalog, the random policy, and no address family restriction. It returns
// nil if no source produced a usable answer.
func Resolve(ctx context.Context) net.IP {
	return ResolveWith(ctx, consensus.PolicyRandom, source.FamilyAny)
}

// ResolveWith determines the external IP address using the full default
// source catalog under the specified policy and address family filter. It
// returns nil if no source produced a usable answer.
func ResolveWith(ctx context.Context, policy consensus.Policy, family source.Family) net.IP {
	return consensus.NewBuilder().
		AddSources(source.DefaultSources()...).
		WithPolicy(policy).
		WithFamily(family).
		Build().
		Resolve(ctx)
}
