package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jba/slog/withsupport"
)

// ConsoleMessage represents a log record forwarded to the browser console
type ConsoleMessage struct {
	RenderID  string            `json:"renderId"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"` // "debug", "info", "warn", "error"
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// ConsoleHandler is a slog.Handler that sends records for one render to a
// console channel and passes them on to the server's own handler
type ConsoleHandler struct {
	renderID    string
	level       slog.Leveler
	with        *withsupport.GroupOrAttrs
	consoleChan chan<- ConsoleMessage
	next        slog.Handler
}

// NewConsoleHandler creates a console handler for a specific render. next
// may be nil; the channel send never blocks.
func NewConsoleHandler(renderID string, consoleChan chan<- ConsoleMessage, level slog.Leveler, next slog.Handler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{
		renderID:    renderID,
		level:       level,
		consoleChan: consoleChan,
		next:        next,
	}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() || (h.next != nil && h.next.Enabled(ctx, level))
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	h2 := *h
	h2.with = h.with.WithGroup(name)
	if h.next != nil {
		h2.next = h.next.WithGroup(name)
	}
	return &h2
}

func (h *ConsoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	h2 := *h
	h2.with = h.with.WithAttrs(as)
	if h.next != nil {
		h2.next = h.next.WithAttrs(as)
	}
	return &h2
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		if err := h.next.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if r.Level < h.level.Level() || h.consoleChan == nil {
		return nil
	}

	msg := ConsoleMessage{
		RenderID:  h.renderID,
		Message:   r.Message,
		Timestamp: r.Time,
		Level:     strings.ToLower(r.Level.String()),
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	attrs := map[string]string{}
	groups := h.with.Apply(func(groups []string, a slog.Attr) {
		addAttr(attrs, groups, a)
	})
	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, groups, a)
		return true
	})
	if len(attrs) > 0 {
		msg.Attrs = attrs
	}

	select {
	case h.consoleChan <- msg:
	default:
		// Channel full, drop rather than stall the render
	}
	return nil
}

// addAttr flattens a into attrs under a dotted group path
func addAttr(attrs map[string]string, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string(nil), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			addAttr(attrs, sub, ga)
		}
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + a.Key
	}
	if a.Value.Kind() == slog.KindTime {
		attrs[key] = a.Value.Time().Format(time.RFC3339Nano)
		return
	}
	attrs[key] = a.Value.String()
}
