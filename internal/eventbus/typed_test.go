package eventbus

import (
	"testing"

	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/events"
	"github.com/robertpezdirc-eng/OMNIBOT12-sub005/core/model"
)

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[events.Event]()
	ch := bus.Subscribe()
	bus.Publish(events.PredictionEvent{Result: model.PredictionResult{AssetID: "V1"}})
	ev := <-ch
	pe, ok := ev.(events.PredictionEvent)
	if !ok || pe.Result.AssetID != "V1" {
		t.Fatalf("unexpected event %#v", ev)
	}
	if ev.EventName() != "prediction" {
		t.Fatalf("unexpected name %s", ev.EventName())
	}
	bus.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTypedWithBuffer[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 dropped, got %d", got)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected oldest event first, got %d", v)
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if _, ok := <-bus.Subscribe(); ok {
		t.Fatalf("expected subscription on closed bus to be closed")
	}
	bus.Publish(1)
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
