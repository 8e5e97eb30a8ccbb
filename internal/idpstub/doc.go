// Package idpstub is an in-process identity service speaking the same JSON
// API the gateway client consumes. It backs the example server, the
// sessionctl "stub" command and cross-package tests.
//
// Passwords are stored as argon2id PHC strings; tokens are HS256 JWTs whose
// claims follow the production shape (sub, name, role, authorities, iat,
// exp) plus a jti used for revocation.
//
// # What this package must NOT do
//
//   - Serve production traffic. Users and revocations live in memory.
package idpstub
