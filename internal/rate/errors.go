package rate

import "errors"

// ErrRateLimited is returned by [Limiter.Allow] when the key's bucket is empty.
var ErrRateLimited = errors.New("rate limited")
