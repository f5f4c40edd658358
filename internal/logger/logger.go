package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. It is a no-op logger until Initialize runs.
var Log = zap.NewNop()

// Initialize builds the process logger.
// logLevel: "debug", "info", "warn", "error" (default: "info")
// logFile: optional path of a rotated JSON log; empty keeps console output only
func Initialize(logLevel string, logFile string) error {
	if logLevel == "" {
		logLevel = "info"
	}
	level := parseLogLevel(logLevel)

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}
	if logFile != "" {
		jsonConfig := zap.NewProductionEncoderConfig()
		jsonConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		rotated := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonConfig), rotated, level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	Log.Debug("Logger initialized",
		zap.String("level", logLevel),
		zap.String("file", logFile),
	)
	return nil
}

// Close flushes buffered entries.
func Close() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WarnWithFields logs a warning with an optional error attached
func WarnWithFields(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Warn(msg, fields...)
}

// ErrorWithFields logs an error with an optional error attached
func ErrorWithFields(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Error(msg, fields...)
}

func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

func WithIdentity(identity string) zap.Field {
	return zap.String("identity", identity)
}

func WithRoomID(roomID string) zap.Field {
	return zap.String("room_id", roomID)
}

func WithClientID(clientID string) zap.Field {
	return zap.String("client_id", clientID)
}

func WithStatus(status int) zap.Field {
	return zap.Int("status", status)
}
