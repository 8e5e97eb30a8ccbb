// Package jwt decodes and structurally validates bearer-token payloads and
// reconstructs the application identity carried in their claims.
//
// # Trust boundary
//
// Tokens are issued and signed by the remote identity service. This package
// never verifies signatures and never checks expiry; liveness is decided
// remotely. It only guarantees that a payload is well formed: three non-empty
// segments, a base64url payload holding a UTF-8 JSON object, and every
// required claim present with the right type.
//
// # What this package must NOT do
//
//   - Perform I/O or consult the clock for validity decisions.
//   - Panic or return a partially populated [Claims] on malformed input.
package jwt
