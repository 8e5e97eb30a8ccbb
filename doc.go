// Package goSession is the session and authorization core of an RBAC admin
// client. It restores a session from a persisted bearer token, logs users in
// and out against a remote identity service, and answers permission questions
// for the views built on top of it.
//
// The package is designed for concurrent use: [Store] readers never block on
// network I/O, and mutations are serialized by a single writer after
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Store], [Builder], [Config],
// [Snapshot] and the [Gateway] and [TokenStore] ports. Token decoding lives in
// jwt/, permission predicates in permission/, the HTTP identity client in
// gateway/, persisted-token backends in storage/ and the HTTP route guard in
// middleware/.
//
// # What this package must NOT do
//
//   - Verify token signatures. The identity service is the trust anchor.
//   - Retry gateway calls. Every retry is a user-initiated resubmission.
//   - Import any sub-package that re-imports goSession (no import cycles).
package goSession
