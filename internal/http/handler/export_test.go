package handler

import (
	"testing"
	"time"
)

// SetNow pins the handlers' clock for the duration of t.
func SetNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}
