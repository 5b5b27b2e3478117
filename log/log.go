// Package log provides the leveled loggers used across the converters. Text
// and JSON loggers queue lines on a buffered channel drained by a single
// writer goroutine, so logging never interleaves with itself.
package log

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type Logger interface {
	Error(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelError
)

func (l LogLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Message struct {
	Timestamp string
	Level     LogLevel
	Message   string
}

func NewMessage(ll LogLevel, msg string) Message {
	return Message{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     ll,
		Message:   msg,
	}
}

// Nop discards everything.
var Nop Logger = nop{}

type nop struct{}

func (nop) Error(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Debug(string, ...interface{}) {}

// queue is the channel shared by the asynchronous loggers. Lines queued
// after Close are dropped, and so are lines that overflow the buffer before
// the writer goroutine has started.
type queue struct {
	mu      sync.Mutex
	lines   chan string
	done    chan struct{}
	started bool
	closed  bool
}

func newQueue(size int) *queue {
	if size <= 0 {
		size = 64
	}
	return &queue{lines: make(chan string, size), done: make(chan struct{})}
}

// start drains the queue into write until Close. Once ctx is done, queued
// lines are discarded instead of written.
func (q *queue) start(ctx context.Context, write func(string)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go func() {
		defer close(q.done)
		for line := range q.lines {
			if ctx.Err() == nil {
				write(line)
			}
		}
	}()
}

func (q *queue) push(line string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if q.started {
		q.lines <- line
		return
	}
	select {
	case q.lines <- line:
	default:
	}
}

// close stops accepting lines and waits for the queued ones to be written.
func (q *queue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.lines)
	started := q.started
	q.mu.Unlock()
	if started {
		<-q.done
	}
}
