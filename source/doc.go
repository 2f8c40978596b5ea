/*
Package source defines the capability contract every external IP probe must
satisfy, together with the concrete probe implementations and their default
catalog.

A [Source] asynchronously produces a candidate external IP address for a
requested address [Family], or fails with one of the errors of this package.
Sources are immutable after construction and safe for concurrent queries.
Probe kinds:

  - [HTTPSource] contacts an HTTP(S) echo service replying with the
    caller's address as its response body.
  - [DNSSource] queries a DNS echo service (A, AAAA, or TXT records known
    to reflect the sender's address).
  - [IGDSource] and [NATPMPSource] ask the local gateway device itself,
    via UPnP IGD respectively NAT-PMP; their blocking discovery runs
    through the oneshot bridge on per-query throw-away workers, so the
    sources themselves hold no background resources.

The default catalogs are plain constructor functions ([HTTPSources],
[DNSSources], [GatewaySources], [DefaultSources]) so that resolution engines
can just as easily be fed arbitrary, even fake, sources.
*/
package source
