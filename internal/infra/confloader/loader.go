package confloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "QUMAIL_"

// Loader merges configuration from dotenv, YAML file and environment.
type Loader struct {
	k          *koanf.Koanf
	envPrefix  string
	filePath   string
	dotenvPath string
}

// Option configures the Loader.
type Option func(*Loader)

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDotenv sets the dotenv file path. The file feeds the process
// environment before the env provider runs, so dotenv values behave
// exactly like real environment variables but at lower priority.
func WithDotenv(path string) Option {
	return func(l *Loader) {
		l.dotenvPath = path
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges all sources into target. A missing config or dotenv file
// is not an error; a present but unreadable one is.
func (l *Loader) Load(target any) error {
	if l.dotenvPath != "" {
		if err := godotenv.Load(l.dotenvPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load dotenv %s: %w", l.dotenvPath, err)
		}
	}

	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("load config file %s: %w", l.filePath, err)
			}
		}
	}

	// QUMAIL_QKD_SESSION__TTL -> qkd.session_ttl: single underscores
	// separate sections, double underscores survive as key underscores.
	transform := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", "\x00")
		s = strings.ReplaceAll(s, "_", ".")
		return strings.ReplaceAll(s, "\x00", "_")
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Get returns a raw value by dotted key. Used by tests and diagnostics.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}
