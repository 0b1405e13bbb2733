package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/notify"
)

// Publisher is the part of Client used by the sinks. Tests substitute it.
type Publisher interface {
	Publish(topic, class string, retained bool, payload []byte) error
}

// NotifySink publishes notification records as JSON on
// <prefix>/<severity>/<asset id>.
type NotifySink struct {
	pub    Publisher
	prefix string
}

// NewNotifySink creates a sink publishing under prefix, "alerts" by default.
func NewNotifySink(pub Publisher, prefix string) *NotifySink {
	if prefix == "" {
		prefix = "alerts"
	}
	return &NotifySink{pub: pub, prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *NotifySink) Notify(ctx context.Context, rec notify.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := s.prefix + "/" + string(rec.Severity) + "/" + rec.AssetID
	return s.pub.Publish(topic, "notify", false, payload)
}
