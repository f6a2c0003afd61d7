package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/linnemanlabs/go-core/log"

	vc "github.com/linnemanlabs/tanggap/internal/cfg"
	"github.com/linnemanlabs/tanggap/internal/complaint"
	"github.com/linnemanlabs/tanggap/internal/complaint/memstore"
	"github.com/linnemanlabs/tanggap/internal/complaint/pgstore"
	"github.com/linnemanlabs/tanggap/internal/llm/claude"
	"github.com/linnemanlabs/tanggap/internal/notify"
	"github.com/linnemanlabs/tanggap/internal/notify/fonnte"
	"github.com/linnemanlabs/tanggap/internal/notify/slack"
	"github.com/linnemanlabs/tanggap/internal/postgres"
	"github.com/linnemanlabs/tanggap/internal/sentiment/nbayes"
)

const defaultEnvFile = ".env"

// loadEnvFile loads path (or .env when empty) into the environment without
// overriding variables that are already set. A missing default file is fine.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

// buildStore picks postgres when a database url is configured and memory otherwise.
func buildStore(ctx context.Context, c *vc.Config) (complaint.Store, func(), error) {
	if c.DatabaseURL == "" {
		return memstore.New(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, c.DatabaseURL, postgres.PoolOptions{
		MaxConns:          int32(c.DBMaxConns), //nolint:gosec // validated non-negative, realistic values are tiny
		SlowQueryDuration: time.Duration(c.SlowQueryMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres pool: %w", err)
	}
	store, err := pgstore.New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pgstore init: %w", err)
	}
	return store, pool.Close, nil
}

// buildClassifier returns the configured sentiment backend.
func buildClassifier(c *vc.Config, L log.Logger) (complaint.Classifier, error) {
	switch c.Classifier {
	case vc.ClassifierNBayes:
		m, err := nbayes.Load(c.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("sentiment model: %w", err)
		}
		return m, nil
	case vc.ClassifierClaude:
		return claude.New(claude.Config{APIKey: c.ClaudeAPIKey, Model: c.ClaudeModel}, L), nil
	case vc.ClassifierNone:
		// nil makes the service label everything unknown
		return nil, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", c.Classifier)
}

// buildNotifier wires reporter delivery and the optional ops mirror.
func buildNotifier(c *vc.Config, L log.Logger, m *notify.Metrics) complaint.Notifier {
	gateway := fonnte.New(c.FonnteToken,
		fonnte.WithURL(c.FonnteURL),
		fonnte.WithCountryCode(c.CountryCode),
	)
	dispatcher := notify.NewDispatcher(gateway, L,
		notify.WithCountryCode(c.CountryCode),
		notify.WithTimeout(c.NotifyTimeout),
		notify.WithMetrics(m),
	)
	if c.SlackWebhookURL == "" {
		return dispatcher
	}
	return notify.Fanout{dispatcher, slack.New(c.SlackWebhookURL, L)}
}
