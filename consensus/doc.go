/*
Package consensus implements the resolution engine that reduces the answers
of multiple independent, untrusted external IP sources to a single result.

A [Consensus] is assembled once using a [Builder] and can then be resolved
any number of times; each [Consensus.Resolve] is stateless with respect to
the engine. The reduction is governed by a [Policy]: [PolicyAll] fans out to
all sources concurrently and elects the address with the most votes,
[PolicyFirst] and [PolicyRandom] walk the sources strictly sequentially, in
configured respectively freshly shuffled order, and short-circuit on the
first success. The sequential policies deliberately avoid eager concurrent
launches: they would waste probes and, for the gateway-backed sources, spawn
unnecessary background discovery workers.

Source failures never surface as resolution errors; they are recorded on the
engine's logger and optional news channel, and resolution answers nil only
when no source at all succeeds. A [StatusMap] can track the news channel for
display purposes.
*/
package consensus
