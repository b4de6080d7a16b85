package gateway

import (
	"context"
	"errors"
	"time"
)

var ErrLockNotAcquired = errors.New("resource is locked by another request")

// SlotLocker serializes bookings that touch the same provider calendar
// across application instances.
type SlotLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
