package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Logger embeds logrus.Logger with a couple of conveniences used by the
// hasher, clusterizer, and stores.
type Logger struct {
	*logrus.Logger
	config LogConfig
}

// LogConfig defines logging configuration.
type LogConfig struct {
	Level    string
	FilePath string
}

// DefaultLogConfig returns sensible default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// NewLogger creates a new configured logger.
func NewLogger(config LogConfig) (*Logger, error) {
	logger := &Logger{
		Logger: logrus.New(),
		config: config,
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetReportCaller(true)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := filepath.Base(f.File)
			return "", fmt.Sprintf("%s:%d", filename, f.Line)
		},
	})

	if config.FilePath != "" {
		if err := logger.setupFileOutput(); err != nil {
			return nil, err
		}
	}

	return logger, nil
}

// setupFileOutput configures file-based logging.
func (l *Logger) setupFileOutput() error {
	dir := filepath.Dir(l.config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.SetOutput(file)
	return nil
}

// WithContext adds contextual fields to the logger.
func (l *Logger) WithContext(fields map[string]interface{}) *logrus.Entry {
	return l.WithFields(logrus.Fields(fields))
}

// LogOperation logs the start and completion of an operation.
func (l *Logger) LogOperation(operation string, fn func() error) error {
	l.Infof("Starting operation: %s", operation)

	err := fn()
	if err != nil {
		l.Errorf("Operation failed: %s - %v", operation, err)
	} else {
		l.Infof("Operation completed: %s", operation)
	}

	return err
}

// LogProgress logs progress information, throttled to every 1% of items
// processed or the final item, to avoid flooding the log on large corpora.
func (l *Logger) LogProgress(operation string, current, total int) {
	if total == 0 {
		return
	}
	step := total / 100
	if step == 0 || current%step == 0 || current == total {
		percentage := float64(current) / float64(total) * 100
		l.Infof("%s progress: %d/%d (%.1f%%)", operation, current, total, percentage)
	}
}

// CreateModuleLogger creates a logger tagged with a "module" field so log
// lines from the hasher, clusterizer, and stores are distinguishable.
func CreateModuleLogger(module string, config LogConfig) (*logrus.Entry, error) {
	logger, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	return logger.WithField("module", module), nil
}
