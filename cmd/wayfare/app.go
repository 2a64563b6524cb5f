// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/db"
	"github.com/danielhkuo/wayfare/notify"
	"github.com/danielhkuo/wayfare/services"
	"github.com/danielhkuo/wayfare/syncer"
)

// app is the client stack shared by every command.
type app struct {
	out     io.Writer
	client  *apiclient.Client
	cache   *syncer.Cache
	session *auth.Session
	store   *db.CacheStore
	svc     *services.Services
	conn    *sql.DB
	metrics *prometheus.Registry
	logger  *slog.Logger
}

func newApp(ctx context.Context, cfg cliparse.ClientConfig, out, errOut io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()

	cacheURL := cfg.CacheDB
	if cacheURL == "" {
		path, err := defaultCachePath()
		if err != nil {
			return nil, err
		}
		cacheURL = "file:" + path
	}
	conn, err := db.Open(cfg.CacheDBType, cacheURL)
	if err != nil {
		return nil, err
	}
	store, err := db.NewCacheStore(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	a := &app{out: out, store: store, conn: conn, metrics: prometheus.NewRegistry(), logger: logger}

	credentials := apiclient.CredentialsOmit
	if cfg.Credentials {
		credentials = apiclient.CredentialsInclude
	}
	a.client = apiclient.New(cfg.BaseURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithCredentials(credentials),
		apiclient.WithLogger(logger),
		apiclient.WithMetrics(apiclient.NewMetrics(a.metrics)),
		apiclient.WithRateLimit(rate.Limit(10), 5),
		apiclient.WithHeader("User-Agent", "wayfare-cli"),
		apiclient.OnUnauthorized(func(*apiclient.APIError) { a.session.SignOut() }),
	)
	a.session = auth.NewSession(a.client)

	sinks := []notify.Sink{printSink{w: errOut}}
	if cfg.Verbose {
		sinks = append(sinks, notify.LogSink{Logger: logger})
	}
	a.cache = syncer.NewCache(
		syncer.WithSink(notify.Multi(sinks...)),
		syncer.WithAuthenticator(a.session),
		syncer.WithPersister(store),
		syncer.WithLogger(logger),
	)
	a.svc = services.New(a.client, a.cache, a.session, logger)

	if id, ok, err := store.LoadSession(ctx); err != nil {
		logger.Warn("could not restore session", "error", err)
	} else if ok {
		a.session.SignIn(id)
	}
	a.session.OnChange(func(id auth.Identity, signedIn bool) {
		var err error
		if signedIn {
			err = store.SaveSession(context.Background(), id)
		} else {
			err = store.ClearSession(context.Background())
		}
		if err != nil {
			logger.Error("failed to persist session", "error", err)
		}
	})

	if n, err := a.cache.Hydrate(ctx); err != nil {
		logger.Warn("could not load cache", "error", err)
	} else {
		logger.Debug("cache loaded", "entries", n)
	}
	return a, nil
}

func (a *app) Close() error {
	a.logRequestCounts()
	return a.conn.Close()
}

// logRequestCounts reports how many API calls the command made, by outcome.
func (a *app) logRequestCounts() {
	families, err := a.metrics.Gather()
	if err != nil {
		a.logger.Debug("metrics unavailable", "error", err)
		return
	}
	for _, mf := range families {
		if mf.GetName() != "wayfare_apiclient_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			attrs := []any{"count", m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			a.logger.Debug("api requests", attrs...)
		}
	}
}

func defaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no cache directory, use --cache-db: %w", err)
	}
	dir = filepath.Join(dir, "wayfare")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// printSink shows failures and sign-in prompts to the user.
type printSink struct {
	w io.Writer
}

func (s printSink) Notify(n notify.Notification) {
	switch n.Level {
	case notify.LevelError:
		fmt.Fprintf(s.w, "✗ %s\n", n.Message)
	case notify.LevelAuthRequired:
		fmt.Fprintf(s.w, "! %s Run: wayfare signin <email>\n", n.Message)
	}
}
