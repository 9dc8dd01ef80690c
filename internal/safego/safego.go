// Package safego runs fire-and-forget goroutines behind a panic guard.
package safego

import "log/slog"

// Go runs fn on its own goroutine, logging and swallowing any panic.
// Background work such as async audit writes goes through here so a
// bug in it cannot take the server down with it.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background goroutine panicked", "panic", r)
			}
		}()
		fn()
	}()
}
