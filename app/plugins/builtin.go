// Package plugins registers the notification sinks backed by
// infrastructure packages. Import it for its side effects.
package plugins

import (
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/factory"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify/journal"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/logger"
	infmqtt "github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/mqtt"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/postgres"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/infra/redis"
)

func init() {
	_ = notify.RegisterSink("log", func(map[string]any) (notify.Sink, error) {
		return notify.NewLogSink(logger.New("notify")), nil
	})
	_ = notify.RegisterSink("journal", journal.Factory)
	_ = notify.RegisterSink("mqtt", mqttSink)
	_ = notify.RegisterSink("redis", redis.Factory)
	_ = notify.RegisterSink("postgres", postgres.Factory)
}

// mqttSink opens a dedicated broker connection for notifications.
func mqttSink(conf map[string]any) (notify.Sink, error) {
	var c struct {
		infmqtt.Config `json:",squash"`
		Prefix         string `json:"prefix"`
	}
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	cli, err := infmqtt.NewClient(c.Config, "notify")
	if err != nil {
		return nil, err
	}
	return infmqtt.NewNotifySink(cli, c.Prefix), nil
}
