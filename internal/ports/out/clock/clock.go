package clock

import "time"

// Clock is the time source for response timestamps, generation latency, rate limiting
// and ID token expiry checks.
type Clock interface {
	Now() time.Time
}
