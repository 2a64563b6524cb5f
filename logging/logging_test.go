// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetup_JSONForNonTerminal(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := Setup(&buf, false)
	logger.Info("hello", "key", "value")
	logger.Debug("hidden")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("Expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["key"] != "value" {
		t.Errorf("Unexpected log line: %v", line)
	}
}

func TestSetup_Verbose(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	Setup(&buf, true)
	slog.Debug("shown")

	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("Expected debug output, got %q", buf.String())
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("A buffer is not a terminal")
	}
}
