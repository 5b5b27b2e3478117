package log

import (
	"context"
	"fmt"
	"io"
)

// TextLogger writes "[LEVEL] timestamp - message" lines.
type TextLogger struct {
	w  io.Writer
	ll LogLevel
	q  *queue
}

func NewTextLogger(w io.Writer, ll LogLevel) *TextLogger {
	return &TextLogger{
		w:  w,
		ll: ll,
		q:  newQueue(64),
	}
}

func (l *TextLogger) Init(ctx context.Context) {
	l.q.start(ctx, func(line string) {
		fmt.Fprintln(l.w, line)
	})
}

// Close flushes the queued lines.
func (l *TextLogger) Close() error {
	l.q.close()
	return nil
}

func (l *TextLogger) queueMessage(msg Message) {
	if msg.Level < l.ll {
		return
	}
	l.q.push(fmt.Sprintf("[%s] %s - %s", msg.Level.String(), msg.Timestamp, msg.Message))
}

func (l *TextLogger) Error(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelError, fmt.Sprintf(format, args...)))
}

func (l *TextLogger) Info(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelInfo, fmt.Sprintf(format, args...)))
}

func (l *TextLogger) Debug(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelDebug, fmt.Sprintf(format, args...)))
}
