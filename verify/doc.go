/*
Package verify implements the optional reachability verification of elected
external IP addresses: a [Pinger] pings addresses on a goroutine-limited
worker pool and streams its verdicts ([types.Verified] or
[types.Unreachable]) over the verdict channel returned by [New].

Please note that pinging arbitrary external addresses may require elevated
privileges; use [AsUnprivileged] to fall back to UDP-based pings where the
platform supports them.
*/
package verify
