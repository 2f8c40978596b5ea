/*
Package types defines extip's information model. Which is rather simple and
mainly revolves around [QualifiedAddress] and [SourcedAddress], as well as the
lifecycle [Quality] of candidate addresses. [SourcedAddress] is a
[QualifiedAddress] with the description of the external IP source the
candidate address originated from.

# Extending QualifiedAddress

Consumers integrating extip into larger applications might need to attach
application-specific information to qualified addresses; anything satisfying
the [QualifiedAddress] interface can travel through the news channels and the
verification stage.

In case an implementation chooses to embed [QualifiedAddressValue] into its
own type, it is essential to (re)implement the
[QualifiedAddressValue.WithNewQuality] method. Failing to do so will cause the
embedded QualifiedAddressValue.WithNewQuality method to be propagated to the
new type, yet it won't return the proper new type, but instead only a stock
QualifiedAddressValue, loosing the additional information in the process.

# Design Rationale

The seemingly peculiar separation into a [QualifiedAddress] interface as well
as a [QualifiedAddressValue] struct type allows polymorphism while passing
candidate addresses around through channels between the concurrent stages
(consensus resolution, verification, display tracking). Since interface
pointers travel through channels, immutability is enforced through a careful
getters-only interface design: quality updates always produce new values via
WithNewQuality instead of mutating shared state. This not only avoids a
locking mess, but also tons of subtle bugs. The price to pay is the ugly
interface/struct types schism.
*/
package types
