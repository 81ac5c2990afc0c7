// Package logger owns the process-wide zap logger and the field helpers used
// across handlers and pipelines.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFile is used when LOG_FILE is empty
const DefaultFile = "memberguard.log"

// Rotation settings for the JSON log file
const (
	maxFileSizeMB = 100
	maxBackups    = 5
	maxAgeDays    = 7
)

// Log is the global logger. It is a no-op until Initialize runs, so packages
// can log from tests without setup.
var Log = zap.NewNop()

// SugaredLog is a sugared logger for printf-style logging
var SugaredLog = Log.Sugar()

// console receives the human-readable stream; tests swap it out
var console io.Writer = os.Stdout

// Initialize installs a logger that writes readable lines to stdout and JSON
// lines to a rotated file. An empty level means info.
func Initialize(level, file string) error {
	if file == "" {
		file = DefaultFile
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxFileSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	fileEncoding := zap.NewProductionEncoderConfig()
	fileEncoding.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(console), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoding), zapcore.AddSync(rotated), lvl),
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	SugaredLog = Log.Sugar()

	Log.Info("Logger initialized", zap.Stringer("level", lvl), zap.String("file", file))
	return nil
}

// Close flushes buffered entries before shutdown
func Close() error {
	return Log.Sync()
}

// WarnWithFields logs msg at warn level, attaching err when present
func WarnWithFields(msg string, err error) {
	Log.Warn(msg, errField(err)...)
}

// ErrorWithFields logs msg at error level, attaching err when present
func ErrorWithFields(msg string, err error) {
	Log.Error(msg, errField(err)...)
}

// FatalWithFields logs msg and exits the process
func FatalWithFields(msg string, err error) {
	Log.Fatal(msg, errField(err)...)
}

func errField(err error) []zap.Field {
	if err == nil {
		return nil
	}
	return []zap.Field{zap.Error(err)}
}

// Field helpers shared by handlers and pipelines

func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

func WithInstanceID(instanceID string) zap.Field {
	return zap.String("instance_id", instanceID)
}

func WithMemberID(memberID string) zap.Field {
	return zap.String("member_id", memberID)
}

func WithConversationID(conversationID string) zap.Field {
	return zap.String("conversation_id", conversationID)
}

func WithEventType(eventType string) zap.Field {
	return zap.String("event_type", eventType)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}

func WithStatus(status int) zap.Field {
	return zap.Int("status", status)
}

func WithDuration(duration time.Duration) zap.Field {
	return zap.Duration("duration", duration)
}
