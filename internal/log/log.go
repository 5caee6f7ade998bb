package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *zap.SugaredLogger
	loggerOnce sync.Once
	atomLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	mu         sync.Mutex
)

// initLogger installs the default console logger on stderr.
func initLogger() {
	loggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger == nil {
			logger = newConsole(atomLevel)
		}
	})
}

// Init replaces the global logger. With json set, records are emitted by the
// zap production JSON encoder; otherwise a compact console encoder is used.
// The current level is kept.
func Init(json bool) error {
	loggerOnce.Do(func() {})

	var l *zap.SugaredLogger
	if json {
		cfg := zap.NewProductionConfig()
		cfg.Level = atomLevel
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		zl, err := cfg.Build()
		if err != nil {
			return err
		}
		l = zl.Sugar()
	} else {
		l = newConsole(atomLevel)
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// SetOutput routes the console encoder to the given sync target. Tests use it
// to capture records.
func SetOutput(ws zapcore.WriteSyncer) {
	loggerOnce.Do(func() {})
	core := zapcore.NewCore(consoleEncoder(), ws, atomLevel)
	mu.Lock()
	logger = zap.New(core).Sugar()
	mu.Unlock()
}

func newConsole(level zap.AtomicLevel) *zap.SugaredLogger {
	core := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}

func consoleEncoder() zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	// 2025-01-01T00:00:00Z [LEVEL] msg key=value ...
	ec.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	ec.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + l.CapitalString() + "]")
	}
	ec.CallerKey = ""
	ec.StacktraceKey = ""
	return zapcore.NewConsoleEncoder(ec)
}

func SetLevel(l Level) {
	initLogger()
	atomLevel.SetLevel(toZap(l))
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	current().Errorw(msg, extended...)
}

// Sync flushes buffered records; call before exit.
func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	initLogger()
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func toZap(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
