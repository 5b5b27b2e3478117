package log

type AggregateLogger struct {
	loggers []Logger
}

func NewAggregateLogger(loggers ...Logger) *AggregateLogger {
	return &AggregateLogger{loggers: loggers}
}

func (l *AggregateLogger) Error(format string, args ...interface{}) {
	for _, logger := range l.loggers {
		logger.Error(format, args...)
	}
}

func (l *AggregateLogger) Info(format string, args ...interface{}) {
	for _, logger := range l.loggers {
		logger.Info(format, args...)
	}
}

func (l *AggregateLogger) Debug(format string, args ...interface{}) {
	for _, logger := range l.loggers {
		logger.Debug(format, args...)
	}
}
