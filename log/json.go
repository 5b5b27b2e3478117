package log

import (
	"context"
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONLogger appends one JSON object per message to a file.
type JSONLogger struct {
	logFile *os.File
	ll      LogLevel
	q       *queue
}

func NewJSONLogger(filename string, ll LogLevel, bufferSize int) (*JSONLogger, error) {
	if filename == "" {
		return nil, errors.New("filename required")
	}
	logFile, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("unable to open the log file (%s): %w", filename, err)
	}
	return &JSONLogger{
		logFile: logFile,
		ll:      ll,
		q:       newQueue(bufferSize),
	}, nil
}

func (l *JSONLogger) Init(ctx context.Context) {
	l.q.start(ctx, func(line string) {
		fmt.Fprintln(l.logFile, line)
	})
}

// Close flushes the queued messages and closes the file.
func (l *JSONLogger) Close() error {
	l.q.close()
	return l.logFile.Close()
}

func (l *JSONLogger) queueMessage(msg Message) {
	if msg.Level < l.ll {
		return
	}
	line, err := json.Marshal(msg)
	if err != nil {
		return
	}
	l.q.push(string(line))
}

func (l *JSONLogger) Error(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelError, fmt.Sprintf(format, args...)))
}

func (l *JSONLogger) Info(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelInfo, fmt.Sprintf(format, args...)))
}

func (l *JSONLogger) Debug(format string, args ...interface{}) {
	l.queueMessage(NewMessage(LevelDebug, fmt.Sprintf(format, args...)))
}
