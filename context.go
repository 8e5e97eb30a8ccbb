package goSession

import "context"

type snapshotContextKey struct{}

// WithSnapshot attaches the session snapshot a request was admitted under.
// middleware.RouteGuard sets it before calling the guarded handler.
func WithSnapshot(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// SnapshotFromContext returns the snapshot set by [WithSnapshot].
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	if ctx == nil {
		return Snapshot{}, false
	}
	snap, ok := ctx.Value(snapshotContextKey{}).(Snapshot)
	return snap, ok
}
