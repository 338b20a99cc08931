package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv names the environment variable holding the log level.
const LevelEnv = "LOG_LEVEL"

func DefaultConfig() zap.Config {
	logConf := zap.NewProductionConfig()
	logConf.Sampling = nil
	logConf.EncoderConfig.TimeKey = "time"
	logConf.EncoderConfig.LevelKey = "severity"
	logConf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logConf.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	// Plans and results go to stdout, keep logs out of the way
	logConf.OutputPaths = []string{"stderr"}

	return logConf
}

// ParseLevel accepts zap level names in any case, surrounded by spaces.
func ParseLevel(l string) (zapcore.Level, error) {
	return zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(l)))
}

// New builds a logger at the given level.
func New(level string) (*zap.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logConf := DefaultConfig()
	logConf.Level = zap.NewAtomicLevelAt(l)
	return logConf.Build()
}

// FromEnv builds a logger at the level set in LOG_LEVEL, or fallback when
// it is unset.
func FromEnv(fallback string) (*zap.Logger, error) {
	level := os.Getenv(LevelEnv)
	if level == "" {
		level = fallback
	}
	return New(level)
}
