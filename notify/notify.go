// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"log/slog"
	"sync"
)

// Level is the semantic category of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	// LevelAuthRequired asks the user to sign in before retrying.
	LevelAuthRequired Level = "auth_required"
)

// Notification reports the outcome of a mutation on a resource. Message is
// already safe to show to a user; sinks decide how to present it.
type Notification struct {
	Level    Level
	Resource string
	Message  string
}

// Sink receives notifications. Implementations must be safe for concurrent
// use.
type Sink interface {
	Notify(Notification)
}

// Func adapts a function to a Sink.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = Func(func(Notification) {})

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(n Notification) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch n.Level {
	case LevelError:
		logger.Warn("notification", "level", n.Level, "resource", n.Resource, "message", n.Message)
	default:
		logger.Info("notification", "level", n.Level, "resource", n.Resource, "message", n.Message)
	}
}

// Recorder keeps every notification it receives, in order.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.all = append(r.all, n)
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Count returns how many notifications of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.all {
		if x.Level == level {
			n++
		}
	}
	return n
}

// Multi fans a notification out to several sinks.
func Multi(sinks ...Sink) Sink {
	return Func(func(n Notification) {
		for _, s := range sinks {
			s.Notify(n)
		}
	})
}
