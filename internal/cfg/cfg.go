package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

// Classifier backends selectable with -classifier.
const (
	ClassifierNBayes = "nbayes"
	ClassifierClaude = "claude"
	ClassifierNone   = "none"
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	DBMaxConns            int
	SlowQueryMs           int
	Classifier            string
	ModelPath             string
	ClaudeAPIKey          string
	ClaudeModel           string
	FonnteToken           string
	FonnteURL             string
	CountryCode           string
	NotifyTimeout         time.Duration
	SlackWebhookURL       string
	AdminToken            string
	TimeZone              string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.IntVar(&c.DBMaxConns, "db-max-conns", 0, "maximum PostgreSQL pool connections (0 = pgxpool default)")
	fs.IntVar(&c.SlowQueryMs, "slow-query-ms", 200, "log queries slower than this many milliseconds (0 = log every query)")
	fs.StringVar(&c.Classifier, "classifier", ClassifierNBayes, "sentiment classifier backend (nbayes|claude|none)")
	fs.StringVar(&c.ModelPath, "model-path", "models/sentiment.yaml", "naive Bayes model file used by -classifier=nbayes")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for the Claude classifier")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model used by -classifier=claude")
	fs.StringVar(&c.FonnteToken, "fonnte-token", "", "Fonnte WhatsApp gateway token (empty = reporter notifications fail and are logged)")
	fs.StringVar(&c.FonnteURL, "fonnte-url", "https://api.fonnte.com/send", "Fonnte send endpoint")
	fs.StringVar(&c.CountryCode, "country-code", "62", "calling code used to canonicalise reporter phone numbers")
	fs.DurationVar(&c.NotifyTimeout, "notify-timeout", 10*time.Second, "upper bound for a single notification send (1s..60s)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL mirroring very urgent complaints")
	fs.StringVar(&c.AdminToken, "admin-token", "", "bearer token required on /api/v1/admin routes (empty = unauthenticated)")
	fs.StringVar(&c.TimeZone, "time-zone", "Asia/Jakarta", "IANA time zone whose calendar year scopes tracking ids")
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.DBMaxConns < 0 {
		errs = append(errs, fmt.Errorf("invalid DB_MAX_CONNS %d (must be >= 0)", c.DBMaxConns))
	}
	if c.SlowQueryMs < 0 {
		errs = append(errs, fmt.Errorf("invalid SLOW_QUERY_MS %d (must be >= 0)", c.SlowQueryMs))
	}

	switch c.Classifier {
	case ClassifierNBayes:
		if c.ModelPath == "" {
			errs = append(errs, errors.New("MODEL_PATH is required for CLASSIFIER=nbayes"))
		}
	case ClassifierClaude:
		if c.ClaudeAPIKey == "" {
			errs = append(errs, errors.New("CLAUDE_API_KEY is required for CLASSIFIER=claude"))
		}
		if c.ClaudeModel == "" {
			errs = append(errs, errors.New("CLAUDE_MODEL is required for CLASSIFIER=claude"))
		}
	case ClassifierNone:
	default:
		errs = append(errs, fmt.Errorf("invalid CLASSIFIER %q (must be nbayes, claude or none)", c.Classifier))
	}

	if c.CountryCode == "" || strings.Trim(c.CountryCode, "0123456789") != "" {
		errs = append(errs, fmt.Errorf("invalid COUNTRY_CODE %q (digits only)", c.CountryCode))
	}

	if c.NotifyTimeout < time.Second || c.NotifyTimeout > time.Minute {
		errs = append(errs, fmt.Errorf("invalid NOTIFY_TIMEOUT %s (must be 1s..60s)", c.NotifyTimeout))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
