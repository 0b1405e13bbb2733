package notify

import (
	"context"
	"errors"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/logger"
)

// Sink delivers notification records.
type Sink interface {
	Notify(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, rec Record) error

func (f SinkFunc) Notify(ctx context.Context, rec Record) error { return f(ctx, rec) }

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Notify(context.Context, Record) error { return nil }

// MultiSink forwards records to every sink and joins their errors.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) Notify(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.Notify(ctx, rec))
	}
	return errors.Join(errs...)
}

// LogSink writes records to a structured logger.
type LogSink struct {
	log logger.Logger
}

// NewLogSink returns a sink logging through log.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: logger.OrNop(log)}
}

func (s *LogSink) Notify(_ context.Context, rec Record) error {
	l := s.log.With(map[string]any{
		"asset_id": rec.AssetID,
		"severity": string(rec.Severity),
		"action":   string(rec.Action),
	})
	switch rec.Severity {
	case SeverityCritical:
		l.Errorf("%s", rec.Message)
	case SeverityWarning:
		l.Warnf("%s", rec.Message)
	default:
		l.Debugf("%s", rec.Message)
	}
	return nil
}

// MinSeverity drops records below min before reaching next.
func MinSeverity(min Severity, next Sink) Sink {
	return SinkFunc(func(ctx context.Context, rec Record) error {
		if !rec.Severity.AtLeast(min) {
			return nil
		}
		return next.Notify(ctx, rec)
	})
}
