package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level      string
	Format     string
	OutputFile string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// DefaultConfig reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE from the environment.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format:     strings.ToLower(getEnv("LOG_FORMAT", FormatJSON)),
		OutputFile: getEnv("LOG_OUTPUT_FILE", OutputStdout),
	}
}

// ParseLevel accepts every zap level name plus "warning".
func (c *LoggerConfig) ParseLevel() (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(c.Level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Level, err)
	}
	return lvl, nil
}

// ToZapLevel is ParseLevel with unknown names mapped to info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	lvl, _ := c.ParseLevel()
	return lvl
}

// Encoding maps "text" onto console; anything else not console is JSON.
func (c *LoggerConfig) Encoding() string {
	switch strings.ToLower(c.Format) {
	case FormatConsole, "text":
		return FormatConsole
	default:
		return FormatJSON
	}
}

func (c *LoggerConfig) writesToFile() bool {
	return c.OutputFile != "" && c.OutputFile != OutputStdout && c.OutputFile != OutputStderr
}
