package server

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func receive(t *testing.T, ch <-chan ConsoleMessage) ConsoleMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for console message")
		return ConsoleMessage{}
	}
}

func TestConsoleHandler_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("test-render-123", messageChan, nil, nil))

	logger.Info("render started", "width", 64, "mode", "full")

	msg := receive(t, messageChan)
	if msg.Message != "render started" {
		t.Errorf("Expected message 'render started', got '%s'", msg.Message)
	}
	if msg.Level != "info" || msg.RenderID != "test-render-123" {
		t.Errorf("got level %q render %q", msg.Level, msg.RenderID)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
	}
	want := map[string]string{"width": "64", "mode": "full"}
	if diff := cmp.Diff(want, msg.Attrs); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestConsoleHandler_GroupsAndAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("r", messageChan, nil, nil)).
		With("scene", "cornell").
		WithGroup("tile").
		With("total", 4)

	logger.Info("tile done", "n", 2, slog.Group("bounds", "x", 0, "y", 8))

	msg := receive(t, messageChan)
	want := map[string]string{
		"scene":         "cornell",
		"tile.total":    "4",
		"tile.n":        "2",
		"tile.bounds.x": "0",
		"tile.bounds.y": "8",
	}
	if diff := cmp.Diff(want, msg.Attrs); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("r", messageChan, slog.LevelWarn, nil))

	logger.Info("ignored")
	logger.Warn("kept")

	msg := receive(t, messageChan)
	if msg.Message != "kept" || msg.Level != "warn" {
		t.Errorf("got %q at %q, want kept at warn", msg.Message, msg.Level)
	}
	select {
	case extra := <-messageChan:
		t.Errorf("unexpected extra message %q", extra.Message)
	default:
	}
}

func TestConsoleHandler_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := slog.New(NewConsoleHandler("r", messageChan, nil, nil))

	done := make(chan struct{})
	go func() {
		logger.Info("Message 1")
		logger.Info("Message 2") // dropped, must not block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logger blocked on a full channel")
	}
	if msg := receive(t, messageChan); msg.Message != "Message 1" {
		t.Errorf("got %q, want Message 1", msg.Message)
	}
}

func TestConsoleHandler_ForwardsToNext(t *testing.T) {
	var serverLog bytes.Buffer
	next := slog.NewTextHandler(&serverLog, &slog.HandlerOptions{Level: slog.LevelDebug})
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("r", messageChan, slog.LevelInfo, next)).With("renderId", "r")

	logger.Debug("server only")
	logger.Info("both")

	out := serverLog.String()
	for _, want := range []string{"msg=\"server only\"", "msg=both", "renderId=r"} {
		if !strings.Contains(out, want) {
			t.Errorf("server log missing %q: %s", want, out)
		}
	}
	if msg := receive(t, messageChan); msg.Message != "both" {
		t.Errorf("console got %q, want both", msg.Message)
	}
}

func TestConsoleHandler_NilChannel(t *testing.T) {
	logger := slog.New(NewConsoleHandler("r", nil, nil, nil))
	logger.Error("nowhere to go") // must not panic
}
