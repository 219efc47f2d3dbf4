package events

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	sub := NewSubscriber("observer", 4)
	bus.Subscribe(sub)

	if bus.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", bus.SubscriberCount())
	}

	bus.Publish(New(StageMonitoring, 7, "", "still in meeting"))

	ev := <-sub.Channel
	if ev.Stage != StageMonitoring || ev.Tick != 7 || ev.Message != "still in meeting" {
		t.Errorf("received %+v", ev)
	}
	if ev.Time.IsZero() {
		t.Error("event missing timestamp")
	}
}

func TestSubscriberDropsWhenFull(t *testing.T) {
	sub := NewSubscriber("slow", 1)

	if !sub.Send(New(StageMonitoring, 1, "", "")) {
		t.Fatal("first send should fit the buffer")
	}
	if sub.Send(New(StageMonitoring, 2, "", "")) {
		t.Error("second send must drop, not block")
	}

	ev := <-sub.Channel
	if ev.Tick != 1 {
		t.Errorf("buffered event tick = %d, want 1", ev.Tick)
	}
}

func TestSendAfterClose(t *testing.T) {
	sub := NewSubscriber("gone", 4)
	sub.Close()

	if sub.IsConnected() {
		t.Error("closed subscriber reports connected")
	}
	if sub.Send(New(StageEnded, 1, "call_ended", "")) {
		t.Error("send to a closed subscriber must report false")
	}
	// Close is idempotent.
	sub.Close()
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := NewSubscriber("observer", 4)
	bus.Subscribe(sub)
	bus.Unsubscribe("observer")

	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", bus.SubscriberCount())
	}
	if _, open := <-sub.Channel; open {
		t.Error("unsubscribed channel still open")
	}
}

func TestShutdownClosesAllSubscribers(t *testing.T) {
	bus := NewBus()
	first := NewSubscriber("first", 4)
	second := NewSubscriber("second", 4)
	bus.Subscribe(first)
	bus.Subscribe(second)

	bus.Shutdown()

	if first.IsConnected() || second.IsConnected() {
		t.Error("subscribers still connected after shutdown")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", bus.SubscriberCount())
	}

	// Publishing to a shut-down bus is a no-op, not a panic.
	bus.Publish(New(StageEnded, 1, "", ""))
}
