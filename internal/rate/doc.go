// Package rate throttles session mutations per key (normally the username)
// with token buckets from golang.org/x/time/rate.
//
// The limiter is in-process only. It exists to stop a UI or script from
// hammering the identity service, not to enforce server-side policy.
package rate
