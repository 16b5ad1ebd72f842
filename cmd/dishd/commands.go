package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/drblury/dishweaver/config"
	"github.com/drblury/dishweaver/jsonutil"
	"github.com/drblury/dishweaver/logging"
	"github.com/drblury/dishweaver/probe"
	"github.com/drblury/dishweaver/server"
)

var envFileFlag = &cli.StringFlag{
	Name:    "env-file",
	Aliases: []string{"e"},
	Usage:   fmt.Sprintf("dotenv file to read (default %q when present)", config.DefaultEnvFile),
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           name,
		Usage:          "In-memory dish CRUD service",
		Version:        version,
		DefaultCommand: "serve",
		Flags:          []cli.Flag{envFileFlag},
		Commands: []*cli.Command{
			serveCmd(),
			healthcheckCmd(),
			settingsCmd(),
			versionCmd(),
		},
	}
}

func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	var opts []config.Option
	if path := cmd.String(envFileFlag.Name); path != "" {
		opts = append(opts, config.WithEnvFile(path))
	}
	return config.Load(opts...)
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server until SIGINT or SIGTERM",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "listen host, overrides " + config.EnvHost},
			&cli.IntFlag{Name: "port", Usage: "listen port, overrides " + config.EnvPort},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("host") {
				settings.Host = cmd.String("host")
			}
			if cmd.IsSet("port") {
				settings.Port = cmd.Int("port")
			}

			logger := logging.SetDefault(os.Stderr, settings.AppName, settings.AppVersion, settings.Debug)
			logger.Debug("build info", "binary", name, "version", version, "commit", commit, "date", date)

			srv, err := server.New(settings, server.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func healthcheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "healthcheck",
		Usage: "Probe a running server's health endpoint; exits non-zero when unhealthy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "health URL (default derived from settings)"},
			&cli.DurationFlag{Name: "timeout", Value: 3 * time.Second, Usage: "request timeout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			target := cmd.String("url")
			if target == "" {
				settings, err := loadSettings(cmd)
				if err != nil {
					return err
				}
				target = healthURL(settings)
			}

			check := probe.NewHTTPProbe(name, target,
				probe.WithHTTPClient(&http.Client{Timeout: cmd.Duration("timeout")}),
				probe.WithAcceptedStatuses(http.StatusOK),
				probe.WithHealthStatus("ok"),
				probe.WithHeader("Accept", "application/json"),
				probe.WithHeader("User-Agent", name+"/"+version),
			)
			if err := check(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, "ok")
			return nil
		},
	}
}

// healthURL points at the health route of a server started with settings.
// Wildcard listen hosts are reached via loopback.
func healthURL(settings *config.Settings) string {
	host := settings.Host
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	addr := net.JoinHostPort(host, strconv.Itoa(settings.Port))
	return "http://" + addr + config.NormalizePrefix(settings.APIPrefix) + "/health"
}

func settingsCmd() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Print the effective settings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"t"}, Value: "yaml", Usage: "output format: json or yaml"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			return writeSettings(cmd.Root().Writer, cmd.String("format"), settings)
		},
	}
}

// settingsView renders durations as strings rather than nanoseconds.
type settingsView struct {
	AppName         string   `json:"appName" yaml:"appName"`
	AppVersion      string   `json:"appVersion" yaml:"appVersion"`
	Debug           bool     `json:"debug" yaml:"debug"`
	Host            string   `json:"host" yaml:"host"`
	Port            int      `json:"port" yaml:"port"`
	APIPrefix       string   `json:"apiPrefix" yaml:"apiPrefix"`
	RequestTimeout  string   `json:"requestTimeout" yaml:"requestTimeout"`
	ShutdownTimeout string   `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	RateLimit       float64  `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst  int      `json:"rateLimitBurst" yaml:"rateLimitBurst"`
	CORSOrigins     []string `json:"corsOrigins" yaml:"corsOrigins"`
	DocsUI          string   `json:"docsUI" yaml:"docsUI"`
}

func newSettingsView(s *config.Settings) settingsView {
	return settingsView{
		AppName:         s.AppName,
		AppVersion:      s.AppVersion,
		Debug:           s.Debug,
		Host:            s.Host,
		Port:            s.Port,
		APIPrefix:       s.APIPrefix,
		RequestTimeout:  s.RequestTimeout.String(),
		ShutdownTimeout: s.ShutdownTimeout.String(),
		RateLimit:       s.RateLimit,
		RateLimitBurst:  s.RateLimitBurst,
		CORSOrigins:     s.CORSOrigins,
		DocsUI:          s.DocsUI,
	}
}

var errUnknownFormat = errors.New("unknown output format")

func writeSettings(w io.Writer, format string, s *config.Settings) error {
	view := newSettingsView(s)
	switch format {
	case "json":
		data, err := jsonutil.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (supported: json, yaml)", errUnknownFormat, format)
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "%s %s (commit %s, built %s)\n", name, version, commit, date)
			return err
		},
	}
}
