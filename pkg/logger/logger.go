package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the process-wide logger. Production environments get JSON
// output at info level, everything else gets the console encoder at debug.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	current().Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = current().Sync()
}
