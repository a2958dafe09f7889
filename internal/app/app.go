// Package app wires configuration, storage, live delivery and the HTTP
// surface into one runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/nft-socials/nft-socials-app-sub000/internal/retention"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/conversations"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/live"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/messaging"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/notify"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/reactions"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/unread"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	hub    *live.Hub
	agg    *unread.Aggregator
	convs  *conversations.Manager
	ch     *messaging.Channel
	fanout *notify.Fanout
	ledger *reactions.Ledger

	srv *http.Server
}

// New initializes resources that do not require a running context (DB,
// logger, service graph). It does not start the HTTP server or the
// retention scheduler; call Run to start those and block until shutdown.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	logger.Init(eff.Config.Logging.Level)

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	liveCfg := eff.Config.Live
	hub := live.NewHub(liveCfg.SubscriberBuffer, liveCfg.MaxPayloadBytes.Int64())

	agg := unread.NewAggregator()
	convs := conversations.NewManager(agg)
	fanout := notify.NewFanout(hub)
	ch := messaging.NewChannel(convs, hub, fanout)
	ledger := reactions.NewLedger(fanout)

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		hub:       hub,
		agg:       agg,
		convs:     convs,
		ch:        ch,
		fanout:    fanout,
		ledger:    ledger,
	}
	return a, nil
}

// Run starts the retention scheduler and the HTTP server, and blocks until
// ctx is canceled or a fatal server error occurs. On cancellation the HTTP
// server drains in-flight requests before Run returns.
func (a *App) Run(ctx context.Context) error {
	retCancel, err := retention.Start(ctx, a.eff.Config.Retention)
	if err != nil {
		return err
	}
	defer retCancel()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Close releases resources opened by New.
func (a *App) Close() error {
	return store.Close()
}
