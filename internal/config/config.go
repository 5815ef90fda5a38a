// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Athlete identifies one roster member to watch.
type Athlete struct {
	ID     string `koanf:"id"`
	Name   string `koanf:"name"`
	Gender string `koanf:"gender"`
}

// Email configures SMTP notification delivery. The password comes from the
// TRACKWATCH_SMTP_PASSWORD environment variable, never from config.
type Email struct {
	Enabled  bool     `koanf:"enabled"`
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	Username string   `koanf:"username"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Sport selects the roster's discipline: "tf" or "xc".
	Sport string `koanf:"sport"`

	// SeasonID restricts fetched results to one season; 0 = all.
	SeasonID int `koanf:"season_id"`

	// DaysBack is the recent-results cutoff window in days.
	DaysBack int `koanf:"days_back"`

	// WorkerCount bounds the per-athlete classification fan-out.
	WorkerCount int `koanf:"worker_count"`

	// PollIntervalMin is the scheduler interval in minutes; 0 disables the
	// loop so runs happen only via POST /api/v1/run.
	PollIntervalMin int `koanf:"poll_interval_min"`

	// StateBackend selects the seen-set store: file, redis or postgres.
	StateBackend string `koanf:"state_backend"`

	// StatePath is the seen-set file location for the file backend.
	StatePath string `koanf:"state_path"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `koanf:"redis_addr"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// SourceBaseURL overrides the results site API base URL.
	SourceBaseURL string `koanf:"source_base_url"`

	// FixturePath, when set, replaces the live source with a JSON fixture.
	FixturePath string `koanf:"fixture_path"`

	// FeedPath and CSVPath, when set, export each run's feed to disk.
	FeedPath string `koanf:"feed_path"`
	CSVPath  string `koanf:"csv_path"`

	// DowngradeStalePR controls whether a source PR flag contradicted by a
	// worse mark is downgraded instead of trusted.
	DowngradeStalePR bool `koanf:"downgrade_stale_pr"`

	// QualifyingSpots is the number of ranked qualifying places.
	QualifyingSpots int `koanf:"qualifying_spots"`

	// Watched is the roster of athletes to track.
	Watched []Athlete `koanf:"watched"`

	// Email configures notification delivery.
	Email Email `koanf:"email"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		Sport:            "tf",
		DaysBack:         7,
		WorkerCount:      runtime.NumCPU(),
		PollIntervalMin:  0,
		StateBackend:     "file",
		StatePath:        "seen_results.json",
		DowngradeStalePR: true,
		QualifyingSpots:  16,
	}
}
