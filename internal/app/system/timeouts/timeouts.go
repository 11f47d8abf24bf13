// Package timeouts holds the deadlines handlers put on their database, cache
// and broker calls. Startup sets them from config; tests may override them.
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config sets the four tiers. A zero field leaves that tier unchanged.
type Config struct {
	Ping   time.Duration // health probes
	Short  time.Duration // one document
	Medium time.Duration // list pages and admin actions
	Long   time.Duration // dashboard aggregation
}

var ping, short, medium, long atomic.Int64

func init() { Reset() }

func Ping() time.Duration   { return time.Duration(ping.Load()) }
func Short() time.Duration  { return time.Duration(short.Load()) }
func Medium() time.Duration { return time.Duration(medium.Load()) }
func Long() time.Duration   { return time.Duration(long.Load()) }

// Configure applies the non-zero fields of c.
func Configure(c Config) {
	set := func(v *atomic.Int64, d time.Duration) {
		if d > 0 {
			v.Store(int64(d))
		}
	}
	set(&ping, c.Ping)
	set(&short, c.Short)
	set(&medium, c.Medium)
	set(&long, c.Long)
}

// Reset restores the defaults.
func Reset() {
	ping.Store(int64(DefaultPing))
	short.Store(int64(DefaultShort))
	medium.Store(int64(DefaultMedium))
	long.Store(int64(DefaultLong))
}

// Current reports the tiers in effect.
func Current() Config {
	return Config{Ping: Ping(), Short: Short(), Medium: Medium(), Long: Long()}
}

// WithTimeout derives a context bounded by d. Its cancel func warns on log
// when the deadline, not the caller, ended the operation.
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			log.Warn("operation timed out", zap.String("operation", op), zap.Duration("timeout", d))
		}
		cancel()
	}
}
