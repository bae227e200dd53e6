package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// logRecord is one line of the log panel.
type logRecord struct {
	at    time.Time
	level slog.Level
	text  string
}

func (r logRecord) String() string {
	return fmt.Sprintf("%s %-5s %s", r.at.Format(time.TimeOnly), r.level, r.text)
}

// logRing keeps the last records handed to the panel. Handlers write to it
// from any goroutine while the render loop reads.
type logRing struct {
	mu      sync.Mutex
	records []logRecord
	limit   int
}

func newLogRing(limit int) *logRing {
	return &logRing{records: make([]logRecord, 0, limit), limit: limit}
}

func (r *logRing) push(rec logRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == r.limit {
		r.records = append(r.records[:0], r.records[1:]...)
	}
	r.records = append(r.records, rec)
}

// tail returns up to n records at or above min, newest first. n <= 0 means all.
func (r *logRing) tail(n int, min slog.Level) []logRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []logRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if n > 0 && len(out) == n {
			break
		}
		if r.records[i].level >= min {
			out = append(out, r.records[i])
		}
	}
	return out
}

// panelHandler is the slog.Handler installed while the terminal owns the
// screen: records land in the ring as a single key=value line.
type panelHandler struct {
	ring  *logRing
	min   slog.Leveler
	attrs string // preformatted WithAttrs output
	group string
}

func newPanelHandler(ring *logRing, min slog.Leveler) *panelHandler {
	return &panelHandler{ring: ring, min: min}
}

func (h *panelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *panelHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.group, a)
		return true
	})

	h.ring.push(logRecord{at: record.Time, level: record.Level, text: sb.String()})
	return nil
}

func (h *panelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}

	clone := *h
	clone.attrs = sb.String()
	return &clone
}

func (h *panelHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

// appendAttr writes " group.key=value", flattening nested groups.
func appendAttr(sb *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, group, ga)
		}
		return
	}

	fmt.Fprintf(sb, " %s%s=%v", group, a.Key, a.Value)
}
