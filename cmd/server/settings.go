package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/httpserver"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/opshttp"
	"github.com/linnemanlabs/go-core/otelx"
	"github.com/linnemanlabs/go-core/prof"

	vc "github.com/linnemanlabs/tanggap/internal/cfg"
)

const envPrefix = "TANGGAP_"

// settings gathers the flag-backed config of every package the server wires.
type settings struct {
	app   vc.Config
	http  httpserver.Config
	mw    httpmw.Config
	log   log.Config
	ops   opshttp.Config
	prof  prof.Config
	trace otelx.Config

	showVersion bool
}

// loadSettings parses args, then fills anything left unset from the
// environment (after loading the optional dotenv file), then validates.
// Command line flags beat environment variables, which beat the dotenv file.
func loadSettings(fs *flag.FlagSet, args []string, stderr io.Writer) (*settings, error) {
	s := &settings{}
	s.app.RegisterFlags(fs)
	s.http.RegisterFlags(fs)
	s.mw.RegisterFlags(fs)
	s.log.RegisterFlags(fs)
	s.ops.RegisterFlags(fs)
	s.prof.RegisterFlags(fs)
	s.trace.RegisterFlags(fs)
	fs.BoolVar(&s.showVersion, "V", false, "Print version+build information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if s.showVersion {
		return s, nil
	}

	if err := loadEnvFile(os.Getenv(envPrefix + "ENV_FILE")); err != nil {
		return nil, err
	}
	cfg.FillFromEnv(fs, envPrefix, func(format string, args ...any) {
		fmt.Fprintf(stderr, format+"\n", args...)
	})

	if err := errors.Join(
		s.app.Validate(),
		s.http.Validate(),
		s.mw.Validate(),
		s.log.Validate(),
		s.ops.Validate(),
		s.prof.Validate(),
		s.trace.Validate(),
	); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if s.app.APIPort == s.ops.Port {
		return nil, fmt.Errorf("api and ops ports must differ (both %d)", s.app.APIPort)
	}
	return s, nil
}
