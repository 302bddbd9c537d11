package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

type Logger struct {
	mu    sync.Mutex
	cfg   Config
	level zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level      LogLevel
	Prefix     string
	Colorize   bool
	ShowCaller bool
	ShowTime   bool
	TimeFormat string
	Output     io.Writer

	// Optional rotating file sink (JSON lines).
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func DefaultConfig() Config {
	return Config{
		Level:      INFO,
		Prefix:     "",
		Colorize:   true,
		ShowCaller: false,
		ShowTime:   true,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stdout,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}

	l := &Logger{
		cfg:   cfg,
		level: zap.NewAtomicLevelAt(cfg.Level.zapLevel()),
	}
	l.build()
	return l
}

// build (re)creates the zap core from the current config. Caller must hold mu or own l.
func (l *Logger) build() {
	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(l.cfg.TimeFormat),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
	if !l.cfg.ShowTime {
		encCfg.TimeKey = ""
	}
	if !l.cfg.ShowCaller {
		encCfg.CallerKey = ""
	}

	consoleCfg := encCfg
	if l.cfg.Colorize {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(l.cfg.Output), l.level),
	}

	if l.cfg.File != "" {
		fileCfg := encCfg
		fileCfg.TimeKey = "time"
		fileCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		rotator := &lumberjack.Logger{
			Filename:   l.cfg.File,
			MaxSize:    l.cfg.MaxSizeMB,
			MaxBackups: l.cfg.MaxBackups,
			MaxAge:     l.cfg.MaxAgeDays,
			Compress:   l.cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), l.level))
	}

	// two frames between the caller and zap: the public method and logf
	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2))
	if l.cfg.Prefix != "" {
		base = base.Named(l.cfg.Prefix)
	}
	l.base = base
	l.sugar = base.Sugar()
}

func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
			cfg.Level = ParseLevel(envLevel)
		}
		if file := os.Getenv("LOG_FILE"); file != "" {
			cfg.File = file
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// SetDefault replaces the logger returned by GetLogger.
func SetDefault(l *Logger) {
	once.Do(func() {})
	defaultLogger = l
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Level = level
	l.level.SetLevel(level.zapLevel())
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg.Level
}

// Named returns a child logger whose entries carry name as the logger key.
func (l *Logger) Named(name string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	cfg := l.cfg
	if cfg.Prefix != "" {
		cfg.Prefix += "." + name
	} else {
		cfg.Prefix = name
	}
	child := &Logger{cfg: cfg, level: l.level}
	child.build()
	return child
}

// Sync flushes buffered entries, e.g. before the process exits.
func (l *Logger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.base.Sync()
}

// logf is the internal logging method
func (l *Logger) logf(level LogLevel, msg string, args ...any) {
	l.mu.Lock()
	sugar := l.sugar
	l.mu.Unlock()

	if len(args) == 0 {
		switch level {
		case DEBUG:
			sugar.Debug(msg)
		case INFO:
			sugar.Info(msg)
		case WARN:
			sugar.Warn(msg)
		case ERROR:
			sugar.Error(msg)
		case FATAL:
			sugar.Fatal(msg)
		}
		return
	}

	switch level {
	case DEBUG:
		sugar.Debugf(msg, args...)
	case INFO:
		sugar.Infof(msg, args...)
	case WARN:
		sugar.Warnf(msg, args...)
	case ERROR:
		sugar.Errorf(msg, args...)
	case FATAL:
		sugar.Fatalf(msg, args...)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...any) {
	l.logf(DEBUG, msg, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...any) {
	l.logf(INFO, msg, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...any) {
	l.logf(WARN, msg, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...any) {
	l.logf(ERROR, msg, args...)
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(msg string, args ...any) {
	l.logf(FATAL, msg, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(DEBUG, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logf(INFO, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logf(WARN, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(ERROR, format, args...)
}

func (l *Logger) Fatalf(format string, args ...any) {
	l.logf(FATAL, format, args...)
}

// Package-level convenience functions using the default logger

func Debugf(format string, args ...any) {
	GetLogger().logf(DEBUG, format, args...)
}

func Infof(format string, args ...any) {
	GetLogger().logf(INFO, format, args...)
}

func Warnf(format string, args ...any) {
	GetLogger().logf(WARN, format, args...)
}

func Errorf(format string, args ...any) {
	GetLogger().logf(ERROR, format, args...)
}

func Fatalf(format string, args ...any) {
	GetLogger().logf(FATAL, format, args...)
}

// SetLevel sets the log level for the default logger
func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	cfg := DefaultConfig()
	cfg.Output = io.Discard
	cfg.Level = FATAL
	return New(cfg)
}
