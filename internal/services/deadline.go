package services

import (
	"context"
	"time"
)

// bounded applies d to ctx when d is positive. The returned cancel must
// always be called.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
