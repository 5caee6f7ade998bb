package config

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"icstrim/internal/ics"
	"icstrim/internal/sink"
	"icstrim/internal/trim"
)

// Config holds the defaults the CLI applies before flags override them.
type Config struct {
	// MonthsBefore is how many calendar months before today the cutoff lies.
	// Zero means today.
	MonthsBefore int `yaml:"months_before"`

	// StripExtensions removes vendor-extension subcomponents from kept events.
	StripExtensions bool `yaml:"strip_extensions"`

	// ExtensionPrefix marks vendor-extension component names.
	ExtensionPrefix string `yaml:"extension_prefix"`

	Verbose bool `yaml:"verbose"`

	// FloatingTimezone is the IANA zone used to read floating date-times
	// (e.g. "Europe/Berlin"). Empty means the process local zone.
	FloatingTimezone string `yaml:"floating_timezone"`

	// MaxOccurrences caps recurrence expansion per event.
	MaxOccurrences int `yaml:"max_occurrences"`

	// VerifyOutput re-parses output with an independent parser before writing.
	VerifyOutput bool `yaml:"verify_output"`

	// CacheDir stores ETag-revalidated copies of URL inputs.
	CacheDir string `yaml:"cache_dir"`

	// Schedule is a cron expression (e.g. "0 3 * * *"). When set, the trim
	// runs on that schedule until interrupted instead of once.
	Schedule string `yaml:"schedule"`

	// LogJSON switches log records to JSON.
	LogJSON bool `yaml:"log_json"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		MonthsBefore:    12,
		ExtensionPrefix: ics.DefaultExtensionPrefix,
		MaxOccurrences:  trim.DefaultMaxOccurrences,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.MonthsBefore < 0 {
		c.MonthsBefore = 0
	}
	if c.ExtensionPrefix == "" {
		c.ExtensionPrefix = ics.DefaultExtensionPrefix
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = trim.DefaultMaxOccurrences
	}
}

// Location resolves FloatingTimezone.
func (c *Config) Location() (*time.Location, error) {
	if c.FloatingTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.FloatingTimezone)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "floating_timezone %q", c.FloatingTimezone), "use an IANA zone name such as Europe/Berlin")
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - An empty path or a missing file yields DefaultConfig.
//   - Otherwise the YAML is decoded over the defaults and normalized, so
//     keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "read config %q", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %q", path)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to path atomically with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return sink.WriteFileAtomic(path, data, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
