// Package configuration reads the tool's settings from an optional .env
// style file, overridden by the process environment.
package configuration

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

const (
	KeyBufferSize       = "FDGLUE_BUFFER_SIZE"
	KeyLogLevel         = "FDGLUE_LOG_LEVEL"
	KeyStressIterations = "FDGLUE_STRESS_ITERATIONS"
	KeyStressWorkers    = "FDGLUE_STRESS_WORKERS"

	DefaultBufferSize       = 1 << 20
	DefaultStressIterations = 10000
	DefaultStressWorkers    = 4
)

//nolint:gochecknoglobals
var keys = []string{
	KeyBufferSize,
	KeyLogLevel,
	KeyStressIterations,
	KeyStressWorkers,
}

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
	LookupEnv(key string) (string, bool)
}

// Config is the principal structure holding the tool's settings.
type Config struct {
	BufferSize       int
	LogLevel         slog.Level
	StressIterations int
	StressWorkers    int
}

// Handler is the principal implementation of the configuration services.
type Handler struct {
	GenericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		GenericHandler: genericHandler,
	}
}

// Defaults returns a [Config] with all settings at their default values.
func Defaults() *Config {
	return &Config{
		BufferSize:       DefaultBufferSize,
		LogLevel:         slog.LevelInfo,
		StressIterations: DefaultStressIterations,
		StressWorkers:    DefaultStressWorkers,
	}
}

// Load returns the [Config] built from the defaults, the given files (if
// any) and the process environment, in increasing order of precedence.
// Settings that are present but invalid are an error, settings that are
// absent keep their default.
func (c *Handler) Load(filenames ...string) (*Config, error) {
	envMap := make(map[string]string)

	if len(filenames) > 0 {
		fileMap, err := c.ReadGeneric(filenames...)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
		envMap = fileMap
	}

	for _, key := range keys {
		if value, ok := c.GenericHandler.LookupEnv(key); ok {
			envMap[key] = value
		}
	}

	config := Defaults()

	if err := c.positiveInt(envMap, KeyBufferSize, &config.BufferSize); err != nil {
		return nil, err
	}

	if err := c.positiveInt(envMap, KeyStressIterations, &config.StressIterations); err != nil {
		return nil, err
	}

	if err := c.positiveInt(envMap, KeyStressWorkers, &config.StressWorkers); err != nil {
		return nil, err
	}

	if value := c.MapKeyToString(envMap, KeyLogLevel); value != "" {
		if err := config.LogLevel.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, KeyLogLevel, value)
		}
	}

	return config, nil
}

// positiveInt sets dst to the value of key if it is present, failing if the
// value is not an integer > 0.
func (c *Handler) positiveInt(envMap map[string]string, key string, dst *int) error {
	if c.MapKeyToString(envMap, key) == "" {
		return nil
	}

	value := c.MapKeyToInt(envMap, key)
	if value < 1 {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, envMap[key])
	}

	*dst = value

	return nil
}

// ReadGeneric reads the given configuration files into a map.
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return c.GenericHandler.Read(filenames...)
}

// MapKeyToString returns the value of key or an empty string.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

// MapKeyToInt returns the value of key as int, or -1 if it is absent or not
// an integer.
func (c *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}
