// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/siemens/extip/consensus"
	"github.com/siemens/extip/source"
	"github.com/siemens/extip/types"
)

// renderer renders the terminal display, based on the per-source qualified
// address information passed to its Render method.
type renderer struct {
	Indentation int
	policy      consensus.Policy
	family      source.Family
	w           io.Writer
	spinner     *spinner
}

// newRenderer returns a renderer object rendering to the specified
// io.Writer, displaying the policy and family the resolution runs under.
func newRenderer(w io.Writer, policy consensus.Policy, family source.Family) *renderer {
	sp := newSpinner()
	sp.Start(*spinnerInterval)
	return &renderer{
		policy:  policy,
		family:  family,
		w:       w,
		spinner: sp,
	}
}

// Stop the renderer's background ticker.
func (r *renderer) Stop() {
	r.spinner.Stop()
}

// Render the given per-source states.
func (r *renderer) Render(states []types.SourcedAddressValue) {
	// If we don't have any source state yet, show a proxy message.
	if len(states) == 0 {
		fmt.Fprintln(r.w, "assembling external IP sources...")
		return
	}
	sortStates(states)
	// For neat display, determine the length of the longest source
	// description, so that the status column doesn't zig-zag around.
	maxlen := 0
	sourcecount := 0
	for _, state := range states {
		if l := len(state.Origin); l > maxlen {
			maxlen = l
		}
		if state.Origin != electedOrigin {
			sourcecount++
		}
	}
	fmt.Fprintf(r.w, "resolving external IP from %d sources (policy %s, family %s)\n",
		sourcecount, sourceNameStyle.Styled(r.policy.String()), sourceNameStyle.Styled(r.family.String()))
	for _, state := range states {
		r.renderState(maxlen, state)
	}
}

// renderState renders a single source's description and qualified address.
func (r *renderer) renderState(labelwidth int, state types.SourcedAddressValue) {
	fmt.Fprintf(r.w, "%-*s%-*s", r.Indentation, "", labelwidth, state.Origin)
	switch state.Quality {
	case types.Pending:
		fmt.Fprint(r.w, "   ·")
	case types.Querying, types.Verifying:
		fmt.Fprint(r.w, pendingStyle.Styled(" "+r.spinner.Spinner()+state.Address+" "))
	case types.Failed:
		fmt.Fprint(r.w, failedStyle.Styled(" × failed "))
	case types.Answered:
		fmt.Fprint(r.w, answeredStyle.Styled(" ✔ "+state.Address+" "))
	case types.Unreachable:
		fmt.Fprint(r.w, failedStyle.Styled(" × "+state.Address+" unreachable "))
	case types.Verified:
		fmt.Fprint(r.w, answeredStyle.Styled(" ✔ "+state.Address+" verified "))
	}
	fmt.Fprintln(r.w)
}

// sortStates sorts the per-source states in place by source description,
// with the elected address always sorting last.
func sortStates(states []types.SourcedAddressValue) {
	sort.Slice(states, func(a, b int) bool {
		oA, oB := states[a].Origin, states[b].Origin
		if (oA == electedOrigin) != (oB == electedOrigin) {
			return oB == electedOrigin
		}
		return oA < oB
	})
}
