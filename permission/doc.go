// Package permission derives authorization decisions from an identity and
// holds the canonical role and operation names of the admin application.
//
// # Decisions
//
// Every predicate is pure and total over a possibly nil identity. Absence of
// an identity, a role or a name yields false: authorization defaults closed.
// Matching is exact and case-sensitive; there are no wildcards.
//
// # Registry
//
// [Registry] is a frozen catalog of known operation names. Route wiring uses
// it to reject requirements that no token could ever grant.
//
// # What this package must NOT do
//
//   - Access the network, storage or the session store.
//   - Import goSession, jwt or gateway.
package permission
