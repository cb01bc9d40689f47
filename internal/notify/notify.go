// Package notify turns outcomes of user actions into localized toasts.
package notify

import (
	"log"
	"sync"

	"gaming-storefront/internal/i18n"
)

// Level of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is a rendered notification.
type Toast struct {
	Level Level
	Key   string
	Text  string
}

// Notifier is what views and sync components report to. Keys are i18n
// message keys; raw error text never reaches the user.
type Notifier interface {
	Success(key string, args ...interface{})
	Error(key string, args ...interface{})
}

// Sink receives rendered toasts.
type Sink func(Toast)

// Toaster renders toasts in the active language.
type Toaster struct {
	locale *i18n.Provider
	sink   Sink
}

// NewToaster creates a Toaster. A nil sink logs toasts.
func NewToaster(locale *i18n.Provider, sink Sink) *Toaster {
	if sink == nil {
		sink = func(t Toast) { log.Printf("INFO: toast[%s] %s", t.Level, t.Text) }
	}
	return &Toaster{locale: locale, sink: sink}
}

func (t *Toaster) Success(key string, args ...interface{}) {
	t.sink(Toast{Level: LevelSuccess, Key: key, Text: t.locale.T(key, args...)})
}

func (t *Toaster) Error(key string, args ...interface{}) {
	t.sink(Toast{Level: LevelError, Key: key, Text: t.locale.T(key, args...)})
}

// Recorder collects toast keys; used by tests of the components that toast.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Success(key string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Level: LevelSuccess, Key: key})
}

func (r *Recorder) Error(key string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Level: LevelError, Key: key})
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Errors returns the keys of recorded error toasts in order.
func (r *Recorder) Errors() []string {
	var keys []string
	for _, t := range r.Toasts() {
		if t.Level == LevelError {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Success(string, ...interface{}) {}
func (Discard) Error(string, ...interface{})   {}
