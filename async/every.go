// Package async includes helpers for scheduling runnable, periodic functions.
package async

import (
	"context"
	"reflect"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunEvery runs the provided command periodically.
// It runs in a goroutine, and can be cancelled by finishing the supplied context.
// The returned channel is closed once the goroutine has exited.
func RunEvery(ctx context.Context, period time.Duration, f func()) <-chan struct{} {
	funcName := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.WithField("function", funcName).Trace("running")
				f()
			case <-ctx.Done():
				log.WithField("function", funcName).Debug("context is closed, exiting")
				return
			}
		}
	}()
	return done
}
