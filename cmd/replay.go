package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/app"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/config"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/engine"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

// replay is an engine loaded with every batch of a fixture.
type replay struct {
	engine  *engine.Engine
	fixture *feed.Fixture
	stop    func()
}

func addFixtureFlag(c *cobra.Command) {
	c.Flags().StringP("fixture", "f", "", "recorded feed to replay (defaults to feed.fixture)")
}

// loadReplay builds an engine from the configuration and feeds it the
// fixture. Call stop to flush pending notifications.
func loadReplay(cmd *cobra.Command) (*replay, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	path, _ := cmd.Flags().GetString("fixture")
	if path == "" {
		path = cfg.Feed.Fixture
	}
	if path == "" {
		return nil, errors.New("no fixture given, use --fixture or feed.fixture")
	}
	fx, err := feed.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	app.ConfigureLogging(cfg.Logging)
	e, queue, err := app.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = queue.Run(ctx)
	}()
	r := &replay{engine: e, fixture: fx, stop: func() { cancel(); <-done }}

	src := feed.NewFixtureSource(*fx)
	for _, kind := range []model.AssetKind{model.AssetVehicle, model.AssetInfrastructure} {
		for {
			batch, err := src.Pull(ctx, kind)
			if err != nil {
				r.stop()
				return nil, err
			}
			if len(batch) == 0 {
				break
			}
			e.Ingest(ctx, kind, batch)
		}
	}
	for {
		snap, err := src.Snapshot(ctx)
		if errors.Is(err, feed.ErrNoSnapshot) {
			break
		}
		if err != nil {
			r.stop()
			return nil, err
		}
		e.OptimizeTraffic(ctx, snap)
	}
	return r, nil
}
