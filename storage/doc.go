// Package storage holds the persisted bearer token between process runs.
//
// Every backend stores exactly one token string per key. Absence is a valid
// state and is reported as ok == false, never as an error. Implementations
// satisfy goSession.TokenStore.
package storage
