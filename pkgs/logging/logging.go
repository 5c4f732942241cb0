package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field names shared by every component.
const (
	FieldRequestID = "request_id"
	FieldTarget    = "target"
	FieldAccount   = "account"
	FieldPath      = "path"
)

// LogFileOptions configures the rotated log file written next to the console output.
type LogFileOptions struct {
	FileName   string
	MaxSize    int // megabytes
	MaxBackups int
}

func (o *LogFileOptions) writer() zapcore.WriteSyncer {
	maxSize := o.MaxSize
	if maxSize == 0 {
		maxSize = 500
	}
	maxBackups := o.MaxBackups
	if maxBackups == 0 {
		maxBackups = 3
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   o.FileName,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	})
}

func parseLevelEncoder(name string) (zapcore.LevelEncoder, error) {
	switch name {
	case "capital":
		return zapcore.CapitalLevelEncoder, nil
	case "capitalColor", "":
		return zapcore.CapitalColorLevelEncoder, nil
	case "lowercase":
		return zapcore.LowercaseLevelEncoder, nil
	default:
		return nil, fmt.Errorf("unsupported level format %q", name)
	}
}

func encoderConfig(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = levelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func newEncoder(format string, cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
	switch format {
	case "json", "":
		return zapcore.NewJSONEncoder(cfg), nil
	case "console":
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// New builds a logger writing to stdout and, when fileOpts names a file, to a rotated file.
// The file always gets JSON with plain level names.
func New(levelName, levelEncoderName, logFormat string, fileOpts *LogFileOptions) (*zap.Logger, error) {
	return newLogger(zapcore.Lock(os.Stdout), levelName, levelEncoderName, logFormat, fileOpts)
}

func newLogger(console zapcore.WriteSyncer, levelName, levelEncoderName, logFormat string, fileOpts *LogFileOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	levelEncoder, err := parseLevelEncoder(levelEncoderName)
	if err != nil {
		return nil, err
	}
	consoleEncoder, err := newEncoder(logFormat, encoderConfig(levelEncoder))
	if err != nil {
		return nil, err
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, console, level),
	}
	if fileOpts != nil && fileOpts.FileName != "" {
		fileEncoder := zapcore.NewJSONEncoder(encoderConfig(zapcore.CapitalLevelEncoder))
		cores = append(cores, zapcore.NewCore(fileEncoder, fileOpts.writer(), level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// SetGlobalLogger replaces zap's global logger, see New.
func SetGlobalLogger(levelName, levelEncoderName, logFormat string, fileOpts *LogFileOptions) error {
	logger, err := New(levelName, levelEncoderName, logFormat, fileOpts)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
