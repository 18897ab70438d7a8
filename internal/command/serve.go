// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/cache"
	"github.com/staranto/itemctl/internal/config"
	"github.com/staranto/itemctl/internal/httpapi"
	"github.com/staranto/itemctl/internal/item"
	applog "github.com/staranto/itemctl/internal/log"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/service"
)

// serveSettings are the serve options after flags, env and config have been
// merged.
type serveSettings struct {
	addr           string
	corsOrigin     string
	cacheTTL       time.Duration
	requestTimeout time.Duration
}

// resolveServeSettings prefers an explicit flag (or its env var), then the
// serve section of the config file, then the built-in default.
func resolveServeSettings(cmd *cli.Command) (s serveSettings, err error) {
	if s.addr = cmd.String("addr"); !cmd.IsSet("addr") {
		if s.addr, err = config.GetString("addr", httpapi.DefaultAddr); err != nil {
			return s, err
		}
	}
	if s.corsOrigin = cmd.String("cors-origin"); !cmd.IsSet("cors-origin") {
		if s.corsOrigin, err = config.GetString("cors_origin", httpapi.DefaultCORSOrigin); err != nil {
			return s, err
		}
	}
	if s.cacheTTL = cmd.Duration("cache-ttl"); !cmd.IsSet("cache-ttl") {
		if s.cacheTTL, err = config.GetDuration("cache_ttl", cache.DefaultTTL); err != nil {
			return s, err
		}
	}
	if s.requestTimeout = cmd.Duration("request-timeout"); !cmd.IsSet("request-timeout") {
		if s.requestTimeout, err = config.GetDuration("timeout", httpapi.DefaultRequestTimeout); err != nil {
			return s, err
		}
	}
	return s, nil
}

// ServeCommandAction serves the item API until SIGINT or SIGTERM.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "serve") {
		return nil
	}

	// A server is quiet at ERROR, so default to INFO unless told otherwise.
	applog.InitLogger("INFO")

	settings, err := resolveServeSettings(cmd)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"addr":            settings.addr,
		"cors_origin":     settings.corsOrigin,
		"cache_ttl":       settings.cacheTTL,
		"request_timeout": settings.requestTimeout,
	}).Debug("serve settings")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	statsCache := cache.New[item.Stats](service.StatsKey,
		cache.WithTTL(settings.cacheTTL),
		cache.WithRegisterer(reg),
	)

	svc, err := OpenService(ctx, cmd, statsCache)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return httpapi.New(svc, httpapi.Config{
		Addr:           settings.addr,
		CORSOrigin:     settings.corsOrigin,
		RequestTimeout: settings.requestTimeout,
		Registry:       reg,
	}).Run(ctx)
}

func ServeCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve the item API over HTTP",
		UsageText: "itemctl serve [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address",
				Value:   httpapi.DefaultAddr,
				Sources: cli.EnvVars("ITEMCTL_ADDR"),
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.StringFlag{
				Name:    "cors-origin",
				Usage:   "origin allowed by CORS",
				Value:   httpapi.DefaultCORSOrigin,
				Sources: cli.EnvVars("ITEMCTL_CORS_ORIGIN"),
			},
			&cli.DurationFlag{
				Name:  "cache-ttl",
				Usage: "how long a stats aggregate is served before it is rebuilt",
				Value: cache.DefaultTTL,
			},
			&cli.DurationFlag{
				Name:  "request-timeout",
				Usage: "upper bound on the time a request may spend in the service",
				Value: httpapi.DefaultRequestTimeout,
			},
			newTLDRFlag(),
		}, NewStoreFlags("serve", meta.Config.Source)...),
		Action: ServeCommandAction,
	}
}
