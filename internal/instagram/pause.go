package instagram

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nao1215/biomail/internal/config"
)

// PauseFunc blocks for a duration drawn from d, or until ctx is done.
type PauseFunc func(ctx context.Context, d config.Delay) error

// RandomPause sleeps for a uniformly random duration within d.
func RandomPause(ctx context.Context, d config.Delay) error {
	wait := jitter(d)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jitter(d config.Delay) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}
