package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is one line of the log panel.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer is a fixed-size ring of log entries, safe for concurrent use.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	count   int
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, max(size, 1))}
}

// Add stores entry, overwriting the oldest one when full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.next] = entry
	lb.next = (lb.next + 1) % len(lb.entries)
	lb.count = min(lb.count+1, len(lb.entries))
}

// GetRecent returns up to n entries, newest first. n <= 0 returns them all.
func (lb *LogBuffer) GetRecent(n int) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	count := lb.count
	if n > 0 && n < count {
		count = n
	}
	if count == 0 {
		return nil
	}

	size := len(lb.entries)
	out := make([]LogEntry, count)
	for i := range out {
		out[i] = lb.entries[(lb.next-1-i+size)%size]
	}
	return out
}

func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.next = 0
	lb.count = 0
}

// LogBufferHandler is a slog.Handler that flattens records, attributes
// included, into a LogBuffer.
type LogBufferHandler struct {
	buffer *LogBuffer
	level  slog.Leveler
	attrs  string
	group  string
}

func NewLogBufferHandler(buffer *LogBuffer, level slog.Leveler) *LogBufferHandler {
	return &LogBufferHandler{buffer: buffer, level: level}
}

func (h *LogBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogBufferHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: sb.String(),
	})
	return nil
}

func (h *LogBufferHandler) appendAttr(sb *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Resolve())
}

func (h *LogBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&sb, a)
	}
	clone := *h
	clone.attrs = sb.String()
	return &clone
}

func (h *LogBufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// FormatLogEntry renders entry as "15:04:05 [INF] message".
func FormatLogEntry(entry LogEntry) string {
	var level string
	switch {
	case entry.Level >= slog.LevelError:
		level = "ERR"
	case entry.Level >= slog.LevelWarn:
		level = "WRN"
	case entry.Level >= slog.LevelInfo:
		level = "INF"
	default:
		level = "DBG"
	}
	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
