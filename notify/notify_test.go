// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(Notification{Level: LevelSuccess, Resource: "destination:d1"})
	r.Notify(Notification{Level: LevelError, Resource: "destination:d1"})
	r.Notify(Notification{Level: LevelError, Resource: "wallet"})

	if got := len(r.All()); got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}
	if got := r.Count(LevelError); got != 2 {
		t.Errorf("expected 2 errors, got %d", got)
	}
	if got := r.Count(LevelAuthRequired); got != 0 {
		t.Errorf("expected 0 auth prompts, got %d", got)
	}
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	Multi(&a, &b, Discard).Notify(Notification{Level: LevelSuccess})

	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Errorf("expected both sinks to receive the notification")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	sink.Notify(Notification{Level: LevelError, Resource: "wallet", Message: "Voucher not found"})

	out := buf.String()
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected warn record, got %q", out)
	}
	if !strings.Contains(out, `message="Voucher not found"`) {
		t.Errorf("expected message attribute, got %q", out)
	}
}
