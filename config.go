package watcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vogo/logger"
	"gopkg.in/yaml.v3"
)

const (
	BackendInotify = "inotify"
	BackendPoll    = "poll"
)

const (
	// DefaultPollInterval bounds every blocking wait, so a stopped watch
	// returns within about this long.
	DefaultPollInterval = 16 * time.Millisecond

	// DefaultBufferSize is the size of the scratch buffer raw records are read
	// into; one page.
	DefaultBufferSize = 4096

	// MinBufferSize fits one inotify record with the longest possible name.
	MinBufferSize = sizeofInotifyEvent + nameMax + 1

	sizeofInotifyEvent = 16
	nameMax            = 255
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrBadInterval    = errors.New("poll interval must be positive")
	ErrBadLogLevel    = errors.New("unknown log level")
)

var logLevels = map[string]int{
	"trace": logger.LevelTrace,
	"debug": logger.LevelDebug,
	"info":  logger.LevelInfo,
	"warn":  logger.LevelWarn,
	"error": logger.LevelError,
	"fatal": logger.LevelFatal,
}

// Config controls which adapter is used and how it waits and reads.
type Config struct {
	// Backend is "inotify" or "poll"; empty selects the platform default.
	Backend string `yaml:"backend"`

	// PollInterval bounds each wait; for the poll backend it is also the
	// scan period.
	PollInterval time.Duration `yaml:"poll_interval"`

	// BufferSize is the raw record buffer size in bytes (inotify only).
	BufferSize int `yaml:"buffer_size"`

	// LogLevel is one of trace, debug, info, warn, error, fatal.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Backend:      defaultBackend,
		PollInterval: DefaultPollInterval,
		BufferSize:   DefaultBufferSize,
		LogLevel:     "info",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.PollInterval == 0 {
		c.PollInterval = d.PollInterval
	}
	if c.BufferSize == 0 {
		c.BufferSize = d.BufferSize
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// Validate reports the first invalid field of c, after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch c.Backend {
	case BackendInotify, BackendPoll:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: %s", ErrBadInterval, c.PollInterval)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel)
	}
	if c.BufferSize < MinBufferSize {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrBufferTooSmall, c.BufferSize, MinBufferSize)
	}
	return nil
}

// ApplyLogLevel sets the package logger level from c.LogLevel. An empty
// level means info.
func (c Config) ApplyLogLevel() error {
	c = c.withDefaults()
	l, ok := logLevels[strings.ToLower(c.LogLevel)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel)
	}
	logger.SetLevel(l)
	return nil
}

// LoadConfig reads a YAML config file. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return c, nil
}

// Option changes the Config used by Watch.
type Option func(*Config)

func WithBackend(name string) Option         { return func(c *Config) { c.Backend = name } }
func WithPollInterval(d time.Duration) Option { return func(c *Config) { c.PollInterval = d } }
func WithBufferSize(n int) Option             { return func(c *Config) { c.BufferSize = n } }

// WithConfig replaces the whole configuration; options after it still apply.
func WithConfig(cfg Config) Option { return func(c *Config) { *c = cfg } }

func getConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return c.withDefaults()
}
