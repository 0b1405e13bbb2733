package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/config"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/feed"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/mqtt"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a fixture to the MQTT telemetry topics, batch by batch",
	RunE:  runPublish,
}

func init() {
	addFixtureFlag(publishCmd)
	publishCmd.Flags().Duration("interval", time.Second, "delay between batches")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path, _ := cmd.Flags().GetString("fixture")
	if path == "" {
		path = cfg.Feed.Fixture
	}
	fx, err := feed.LoadFixture(path)
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	cli, err := mqtt.NewClient(cfg.MQTT, "publisher")
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer cli.Disconnect()

	n, err := publishFixture(ctx, cli, fx, cfg.Feed.Telemetry.Prefix, interval)
	logger.New("publisher").Infof("published %d messages", n)
	return err
}

// wireReading is the payload accepted by the telemetry manager.
type wireReading struct {
	AssetID  string          `json:"asset_id"`
	Kind     model.AssetKind `json:"kind"`
	Metrics  map[string]any  `json:"metrics"`
	Location *model.GeoPoint `json:"location,omitempty"`
	Routes   []string        `json:"routes,omitempty"`
	TS       string          `json:"ts,omitempty"`
}

// publishFixture sends the i-th vehicle batch, infrastructure batch and
// traffic snapshot together, then waits interval before the next round.
func publishFixture(ctx context.Context, pub mqtt.Publisher, fx *feed.Fixture, prefix string, interval time.Duration) (int, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	rounds := max(len(fx.Vehicle), len(fx.Infrastructure), len(fx.Traffic))
	sent := 0
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-time.After(interval):
			}
		}
		for kind, batches := range map[model.AssetKind][][]feed.Reading{
			model.AssetVehicle:        fx.Vehicle,
			model.AssetInfrastructure: fx.Infrastructure,
		} {
			if i >= len(batches) {
				continue
			}
			for _, r := range batches[i] {
				w := wireReading{AssetID: r.AssetID, Kind: kind, Metrics: r.Metrics, Location: r.Location, Routes: r.Routes}
				if !r.Timestamp.IsZero() {
					w.TS = r.Timestamp.Format(time.RFC3339)
				}
				payload, err := json.Marshal(w)
				if err != nil {
					return sent, err
				}
				if err := pub.Publish(prefix+"/"+string(kind)+"/"+r.AssetID, "sensors", false, payload); err != nil {
					return sent, err
				}
				sent++
			}
		}
		if i < len(fx.Traffic) {
			payload, err := json.Marshal(fx.Traffic[i])
			if err != nil {
				return sent, err
			}
			if err := pub.Publish(prefix+"/traffic/snapshot", "sensors", true, payload); err != nil {
				return sent, err
			}
			sent++
		}
	}
	return sent, nil
}
