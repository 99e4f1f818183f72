// Package logutil builds the process logger used by the command line
// tools. The library itself only accepts an optional *zap.SugaredLogger
// and never configures logging on its own.
package logutil

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the logging parameters.
type Config struct {
	Logfile string `yaml:"logfile" envconfig:"LOGFILE"`
	Level   string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// NewConfig returns a Config with default settings.
func NewConfig() *Config {
	return &Config{
		Logfile: "stderr",
		Level:   "info",
	}
}

// Logger wraps the sugared zap logger handed to engines and commands.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger creates a console logger per the config.
func NewLogger(cfg *Config) (*Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrap(err, "can not set logging level")
	}

	var f *os.File
	switch cfg.Logfile {
	case "stderr", "":
		f = os.Stderr
	case "stdout":
		f = os.Stdout
	default:
		var err error
		f, err = os.OpenFile(cfg.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "can not open logfile")
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	ws := zapcore.Lock(zapcore.AddSync(f))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, lvl)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}, nil
}
