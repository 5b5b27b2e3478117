package log

import (
	"fmt"
)

// MessageSink receives log lines for display, such as the status pane of
// the terminal viewer.
type MessageSink interface {
	AddInfoMsg(msg string)
	AddErrorMsg(msg string)
}

// TuiLogger forwards messages to a MessageSink synchronously.
type TuiLogger struct {
	sink MessageSink
	ll   LogLevel
}

func NewTuiLogger(ll LogLevel, sink MessageSink) *TuiLogger {
	return &TuiLogger{
		sink: sink,
		ll:   ll,
	}
}

func (l *TuiLogger) Error(format string, args ...interface{}) {
	l.sink.AddErrorMsg(fmt.Sprintf(format, args...))
}

func (l *TuiLogger) Info(format string, args ...interface{}) {
	if l.ll <= LevelInfo {
		l.sink.AddInfoMsg(fmt.Sprintf(format, args...))
	}
}

func (l *TuiLogger) Debug(format string, args ...interface{}) {
	if l.ll == LevelDebug {
		l.sink.AddInfoMsg(fmt.Sprintf(format, args...))
	}
}
