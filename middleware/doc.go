// Package middleware adapts the session to HTTP route protection.
//
// # Guards
//
//   - [Decide] is the pure access decision over a goSession.Snapshot.
//   - [RouteGuard] wraps a handler with a fixed [RouteOptions] requirement.
//   - [Guard] does the same but checks permission names against a
//     permission.Registry when the route is wired.
//
// While the session is still bootstrapping every guarded route answers with
// the loading handler (503 and Retry-After by default). A denial is never
// issued before bootstrap completes.
//
// Admitted requests carry the snapshot the decision was made on; read it
// with goSession.SnapshotFromContext.
//
// # Architecture boundaries
//
// This package translates session state into HTTP responses. Permission and
// role checks are delegated to the permission package.
//
// # What this package must NOT do
//
//   - Mutate the session (login, logout and bootstrap belong to the Store).
//   - Parse tokens or call the identity service.
//   - Cache decisions across requests.
package middleware
