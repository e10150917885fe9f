package view

import (
	"sync"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ToastDuration is how long a notification stays visible.
const ToastDuration = 3 * time.Second

// Toast is a transient notification shown after an operation completes.
type Toast struct {
	Title       string
	Description string
	Status      Status
	Duration    time.Duration
	Closable    bool
}

func SuccessToast(description string) Toast {
	return Toast{Title: "Success", Description: description, Status: StatusSuccess, Duration: ToastDuration, Closable: true}
}

func ErrorToast(description string) Toast {
	return Toast{Title: "Error", Description: description, Status: StatusError, Duration: ToastDuration, Closable: true}
}

// Notifier shows toasts to the user.
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(t Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Toasts collects notifications in order. The zero value is ready to use.
type Toasts struct {
	mu    sync.Mutex
	items []Toast
}

func (t *Toasts) Notify(toast Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, toast)
}

// Drain returns the collected toasts and forgets them.
func (t *Toasts) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := t.items
	t.items = nil
	return items
}
