// Package app assembles the engine, its feeds and its outputs from the
// configuration and runs them together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/config"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/engine"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	coremetrics "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/metrics"
	coremon "github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/monitoring"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/metrics"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/monitoring"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/mqtt"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/telemetry"

	_ "github.com/robertpezdirc-eng/OMNIBOT12-sub005/app/plugins"
)

// Service owns the engine and every component feeding or observing it.
type Service struct {
	Engine     *engine.Engine
	Dispatcher *engine.Dispatcher

	cfg      *config.Config
	log      logger.Logger
	queue    *notify.Queue
	sink     coremetrics.MetricsSink
	mqtt     *mqtt.Client
	fixture  *feed.Fixture
	logFile  io.Closer
	promAddr string
}

// ConfigureLogging applies the level and optional rotated file output. The
// returned closer releases the file.
func ConfigureLogging(cfg config.LoggingConfig) io.Closer {
	logger.SetLevel(cfg.Level)
	if cfg.File == "" {
		return nopCloser{}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, lj))
	return lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewEngine builds an engine with the configured notification sinks. It is
// shared by the long running service and the one-shot commands.
func NewEngine(cfg *config.Config, opts ...engine.Option) (*engine.Engine, *notify.Queue, error) {
	sink, err := notify.NewSink(cfg.Notify, logger.New("notify"))
	if err != nil {
		return nil, nil, fmt.Errorf("notify sink: %w", err)
	}
	queue := notify.NewQueue(sink, cfg.Notify.QueueSize, notify.WithQueueLogger(logger.New("notify-queue")))
	opts = append([]engine.Option{
		engine.WithLogger(logger.New("engine")),
		engine.WithQueue(queue),
	}, opts...)
	e, err := engine.New(cfg.Engine, opts...)
	if err != nil {
		return nil, nil, err
	}
	return e, queue, nil
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logFile := ConfigureLogging(cfg.Logging)
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	e, queue, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		Engine:   e,
		cfg:      cfg,
		log:      logg,
		queue:    queue,
		sink:     sink,
		logFile:  logFile,
		promAddr: cfg.Metrics.PrometheusAddr,
	}

	if cfg.Feed.Source == config.FeedMQTT || cfg.Relay.Enabled {
		cli, err := mqtt.NewClient(cfg.MQTT, "engine")
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = cli
	}

	var (
		sensors feed.Source
		flows   feed.TrafficSource
	)
	switch cfg.Feed.Source {
	case config.FeedFixture:
		fx, err := feed.LoadFixture(cfg.Feed.Fixture)
		if err != nil {
			return nil, fmt.Errorf("fixture: %w", err)
		}
		var fopts []feed.FixtureOption
		if cfg.Feed.Loop {
			fopts = append(fopts, feed.WithLoop())
		}
		src := feed.NewFixtureSource(*fx, fopts...)
		sensors, flows = src, src
		svc.fixture = fx
	case config.FeedMQTT:
		mgr := telemetry.NewManager(cfg.Feed.Telemetry)
		if err := mgr.Start(svc.mqtt); err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		sensors, flows = mgr, mgr
	}

	d, err := engine.NewDispatcher(e, sensors, flows, cfg.Dispatcher,
		engine.WithDispatcherLogger(logger.New("dispatcher")))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	svc.Dispatcher = d
	return svc, nil
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	collected := metrics.StartEventCollector(ctx, s.Engine.Bus(), s.sink)
	g.Go(func() error {
		<-collected
		return nil
	})
	if s.mqtt != nil && s.cfg.Relay.Enabled {
		relayed := mqtt.NewRelay(s.mqtt, s.cfg.Relay.Prefix).Start(ctx, s.Engine.Bus())
		g.Go(func() error {
			<-relayed
			return nil
		})
	}
	g.Go(func() error { return s.queue.Run(ctx) })
	g.Go(func() error { return s.Dispatcher.Run(ctx) })

	if s.promAddr != "" {
		srv := metrics.StartPromServer(s.promAddr, logger.New("prometheus"))
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if s.fixture != nil && len(s.fixture.Emergency) > 0 {
		routes, err := s.Engine.HandleEmergencyVehicles(ctx, s.fixture.Emergency)
		if err != nil {
			s.log.Warnf("fixture emergencies: %v", err)
		}
		s.log.Infof("routed %d emergency vehicles from fixture", len(routes))
	}

	s.log.Infof("engine running (feed=%s)", s.cfg.Feed.Source)
	return g.Wait()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	if _, ok := s.logFile.(nopCloser); !ok {
		logger.SetOutput(nil)
	}
	return s.logFile.Close()
}
