package model

import (
	"sync"
	"time"
)

// Flash levels.
const (
	FlashInfo = "info"
	FlashErr  = "error"
)

// Flash holds a transient notification message with an expiry.
type Flash struct {
	mu      sync.RWMutex
	message string
	level   string
	expires time.Time
}

// Set stores an info flash that expires after the given duration.
func (f *Flash) Set(msg string, d time.Duration) {
	f.set(msg, FlashInfo, d)
}

// SetErr stores an error flash that expires after the given duration.
func (f *Flash) SetErr(msg string, d time.Duration) {
	f.set(msg, FlashErr, d)
}

func (f *Flash) set(msg, level string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.level = level
	f.expires = time.Now().Add(d)
}

// Get returns the current message and level, or empty strings if expired.
func (f *Flash) Get() (string, string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return "", ""
	}
	return f.message, f.level
}
