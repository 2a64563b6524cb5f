// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify carries success and failure notifications from the cache
// synchronizer to whatever presents them (toasts, a CLI, logs).
//
// The synchronizer only chooses the Level and the affected resource; the
// Message is derived from apiclient.UserMessage and never contains raw
// transport errors.
//
//	sink := notify.Multi(notify.LogSink{}, notify.Func(func(n notify.Notification) {
//	    fmt.Printf("[%s] %s\n", n.Level, n.Message)
//	}))
package notify
