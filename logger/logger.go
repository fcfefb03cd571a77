package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// FormatPretty is an alias of the console format.
const FormatPretty = "pretty"

// Logger wraps zerolog.Logger with gokv's field conventions.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// New creates a logger from cfg. An unknown level falls back to info.
func New(cfg *Config, serviceName string) *Logger {
	out := outputWriter(cfg.Output)
	var zl zerolog.Logger
	if isConsole(cfg.Format) {
		zl = zerolog.New(consoleWriter(out, cfg.NoColor, serviceName))
	} else {
		zl = zerolog.New(out).With().Str("service", serviceName).Logger()
	}

	zc := zl.Level(parseLevel(cfg.Level)).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewWithWriter creates a JSON logger writing to w at the given level.
// Tests use it to assert on log output.
func NewWithWriter(w io.Writer, level, serviceName string) *Logger {
	return &Logger{
		logger:  zerolog.New(w).Level(parseLevel(level)).With().Str("service", serviceName).Logger(),
		service: serviceName,
	}
}

// NewDefault creates an info-level console logger on stderr.
func NewDefault(serviceName string) *Logger {
	cfg := Config{}
	cfg.ApplyDefaults()
	return New(&cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// WithContext returns a logger enriched with the trace and span IDs of the
// span recorded in ctx, and the request ID if one was attached.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.logger.With()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	return l.derive(zc)
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request ID picked up by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.logger.With().Str(FieldComponent, name))
}

// WithCommand returns a logger tagged with a store command and, when set,
// the key it addresses.
func (l *Logger) WithCommand(name, key string) *Logger {
	zc := l.logger.With().Str(FieldCommand, name)
	if key != "" {
		zc = zc.Str(FieldKey, key)
	}
	return l.derive(zc)
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.logger.With().Fields(fields))
}

// WithError returns a logger with an error field.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.logger.With().Err(err))
}

// DebugEnabled reports whether debug lines are written. Hot paths check it
// before building fields.
func (l *Logger) DebugEnabled() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{logger: zc.Logger(), service: l.service}
}

var globalLogger *Logger

// SetGlobalLogger sets the logger returned by GetGlobalLogger.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("gokv")
	}
	return globalLogger
}

func emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	if event == nil {
		return
	}
	for _, fm := range fields {
		event.Fields(fm)
	}
	event.Msg(msg)
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func isConsole(format string) bool {
	f := strings.ToLower(format)
	return f == "console" || f == FormatPretty
}

func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stdout") {
		return os.Stdout
	}
	return os.Stderr
}

// consoleWriter prints "[SVC][LVL] message key:value" lines.
func consoleWriter(out io.Writer, noColor bool, serviceName string) zerolog.ConsoleWriter {
	prefix := ""
	if len(serviceName) >= 3 {
		prefix = "[" + strings.ToUpper(serviceName[:3]) + "]"
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToUpper(fmt.Sprint(i))
			if len(lvl) > 3 {
				lvl = lvl[:3]
			}
			return prefix + "[" + lvl + "]"
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
