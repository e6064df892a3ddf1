// Package config loads and validates the coursepilot configuration.
// Configuration comes from an optional YAML file with defaults for the
// target platform; credentials come from the process environment only and
// are never written to disk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the platform credentials.
const (
	EnvUsername = "COURSEPILOT_USERNAME"
	EnvPassword = "COURSEPILOT_PASSWORD"
)

// Default platform endpoints. These match the open-university LMS the tool
// was built against; all of them can be overridden in the config file.
const (
	DefaultHomeURL         = "https://lms.ouchn.cn/user/index#/"
	DefaultCatalogURL      = "https://lms.ouchn.cn/user/courses#/"
	DefaultLoginURL        = "https://iam.pt.ouchn.cn/am/UI/Login"
	DefaultCoursePrefixURL = "https://lms.ouchn.cn/course/"
)

// Default wait bounds. A zero duration means wait forever, which is the
// documented behavior for the playback poll: a lecture video takes as long
// as it takes.
const (
	DefaultLoginProbeTimeout = 2 * time.Second
	DefaultLoginTimeout      = 90 * time.Second
	DefaultNavigationTimeout = 0 * time.Second
	DefaultPlaybackTimeout   = 0 * time.Second
	DefaultPollInterval      = 500 * time.Millisecond
	DefaultExpandTimeout     = 1 * time.Second
)

// Platform holds the fixed URLs of the target e-learning platform.
type Platform struct {
	// HomeURL is the authenticated landing page.
	HomeURL string `yaml:"home_url"`

	// CatalogURL lists every course the user is enrolled in.
	CatalogURL string `yaml:"catalog_url"`

	// LoginURL is where unauthenticated navigation gets redirected.
	LoginURL string `yaml:"login_url"`

	// CoursePrefixURL is the path prefix shared by all course detail pages.
	CoursePrefixURL string `yaml:"course_prefix_url"`
}

// Timeouts configures the bound for each wait class. Zero disables the
// bound for that class.
type Timeouts struct {
	// LoginProbe bounds the redirect-to-login detection after opening the
	// home page. This is the only wait the upstream platform needs to win
	// quickly: no redirect within the bound means the session is live.
	LoginProbe time.Duration `yaml:"login_probe"`

	// Login bounds the wait for the post-login redirect back home.
	Login time.Duration `yaml:"login"`

	// Navigation bounds every URL-pattern wait in the main loop.
	Navigation time.Duration `yaml:"navigation"`

	// Playback bounds the playback completion poll.
	Playback time.Duration `yaml:"playback"`

	// PollInterval is the cadence of the playback completion poll.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Expand bounds the visibility probe for the expand-all control.
	Expand time.Duration `yaml:"expand"`
}

// UnmarshalYAML decodes timeouts written as duration strings ("45s",
// "2m"). Omitted keys keep whatever value the struct already holds, so
// defaults survive partial files. "0" means unbounded.
func (t *Timeouts) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		LoginProbe   string `yaml:"login_probe"`
		Login        string `yaml:"login"`
		Navigation   string `yaml:"navigation"`
		Playback     string `yaml:"playback"`
		PollInterval string `yaml:"poll_interval"`
		Expand       string `yaml:"expand"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"login_probe", raw.LoginProbe, &t.LoginProbe},
		{"login", raw.Login, &t.Login},
		{"navigation", raw.Navigation, &t.Navigation},
		{"playback", raw.Playback, &t.Playback},
		{"poll_interval", raw.PollInterval, &t.PollInterval},
		{"expand", raw.Expand, &t.Expand},
	} {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("timeouts.%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return nil
}

// Browser configures the browsing session itself.
type Browser struct {
	// Headless runs the browser without a window. The LMS player behaves
	// better headful, so the default is false.
	Headless bool `yaml:"headless"`

	// ProfileDir is the persistent profile directory, which keeps the
	// platform session cookie between runs.
	ProfileDir string `yaml:"profile_dir"`

	// SlowMoMillis paces every browser operation, in milliseconds.
	SlowMoMillis float64 `yaml:"slow_mo_millis"`
}

// Credentials are the two opaque login secrets. They are injected from the
// environment at load time and handed to the session bootstrap only.
type Credentials struct {
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// Config is the full coursepilot configuration.
type Config struct {
	Platform    Platform    `yaml:"platform"`
	Timeouts    Timeouts    `yaml:"timeouts"`
	Browser     Browser     `yaml:"browser"`
	LogFile     string      `yaml:"log_file"`
	Credentials Credentials `yaml:"-"`
}

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Default returns a Config populated with the platform defaults and no
// credentials.
func Default() *Config {
	return &Config{
		Platform: Platform{
			HomeURL:         DefaultHomeURL,
			CatalogURL:      DefaultCatalogURL,
			LoginURL:        DefaultLoginURL,
			CoursePrefixURL: DefaultCoursePrefixURL,
		},
		Timeouts: Timeouts{
			LoginProbe:   DefaultLoginProbeTimeout,
			Login:        DefaultLoginTimeout,
			Navigation:   DefaultNavigationTimeout,
			Playback:     DefaultPlaybackTimeout,
			PollInterval: DefaultPollInterval,
			Expand:       DefaultExpandTimeout,
		},
		Browser: Browser{
			Headless:     false,
			SlowMoMillis: 450,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// the credential environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Credentials = Credentials{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required value is present. Credentials are
// required up front so a misconfigured run fails before a browser launches.
func (c *Config) Validate() error {
	if c.Credentials.Username == "" {
		return &ConfigurationError{Field: EnvUsername, Reason: "login name is not set"}
	}
	if c.Credentials.Password == "" {
		return &ConfigurationError{Field: EnvPassword, Reason: "login password is not set"}
	}
	for _, u := range []struct {
		field string
		value string
	}{
		{"platform.home_url", c.Platform.HomeURL},
		{"platform.catalog_url", c.Platform.CatalogURL},
		{"platform.login_url", c.Platform.LoginURL},
		{"platform.course_prefix_url", c.Platform.CoursePrefixURL},
	} {
		if u.value == "" {
			return &ConfigurationError{Field: u.field, Reason: "must not be empty"}
		}
	}
	if c.Timeouts.PollInterval <= 0 {
		return &ConfigurationError{Field: "timeouts.poll_interval", Reason: "must be positive"}
	}
	return nil
}
