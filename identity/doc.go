// Package identity defines the application-facing user record shared by the
// token codec, the permission evaluator and the session store.
//
// # Architecture boundaries
//
// Values only. The types carry JSON tags matching the remote identity
// service's user shape so a fetched profile decodes directly into them.
//
// # What this package must NOT do
//
//   - Perform I/O or decode tokens (see package jwt).
//   - Make authorization decisions (see package permission).
package identity
