package serial

import (
	"log/slog"
	"strings"
	"sync"
)

// LogSink implements a dummy serial device that just logs outgoing bytes as text.
// Handy for debugging test roms that output to serial.
type LogSink struct {
	logger *slog.Logger

	// reply is handed back on every receive poll when hasReply is set.
	// Without it the port shifts in 0xFF, like an unplugged cable.
	reply    byte
	hasReply bool

	mu     sync.Mutex
	line   []byte
	lines  []string
	output strings.Builder
}

type LogSinkOption func(*LogSink)

// WithLogger routes the serial lines to logger instead of the default one.
func WithLogger(logger *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = logger } }

// WithReply makes the sink answer every transfer with value.
func WithReply(value byte) LogSinkOption {
	return func(s *LogSink) {
		s.reply = value
		s.hasReply = true
	}
}

// NewLogSink creates a new logging serial device.
func NewLogSink(opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transmit buffers the outgoing byte until a line is complete.
func (s *LogSink) Transmit(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b != 0 {
		s.output.WriteByte(b)
	}

	if b == 0 || b == '\n' || b == '\r' {
		s.flush()
		return
	}
	s.line = append(s.line, b)
}

func (s *LogSink) Receive() (byte, bool) {
	return s.reply, s.hasReply
}

func (s *LogSink) flush() {
	if len(s.line) == 0 {
		return
	}
	line := string(s.line)
	s.logger.Info("serial", "line", line)
	s.lines = append(s.lines, line)
	s.line = s.line[:0]
}

// Lines returns the completed lines received so far.
func (s *LogSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.lines...)
}

// Output returns every byte received so far as text, including a partial last line.
func (s *LogSink) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.output.String()
}
