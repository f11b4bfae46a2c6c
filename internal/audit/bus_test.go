package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishRoutesByType(t *testing.T) {
	bus := NewBus()
	var executed, blocked int
	bus.Subscribe(EventOrderExecuted, func(Event) { executed++ })
	bus.Subscribe(EventGateBlocked, func(Event) { blocked++ })

	bus.Publish(Event{EventType: EventOrderExecuted})
	bus.Publish(Event{EventType: EventOrderExecuted})
	bus.Publish(Event{EventType: EventGateBlocked})

	assert.Equal(t, 2, executed)
	assert.Equal(t, 1, blocked)
}

func TestBus_WildcardListener(t *testing.T) {
	bus := NewBus()
	var all int
	bus.Subscribe("", func(Event) { all++ })

	bus.Publish(Event{EventType: EventOrderExecuted})
	bus.Publish(Event{EventType: EventCancelled})

	assert.Equal(t, 2, all)
}

func TestBus_PanickingListenerIsIsolated(t *testing.T) {
	bus := NewBus()
	var sibling int
	bus.Subscribe(EventOrderExecuted, func(Event) { panic("boom") })
	bus.Subscribe(EventOrderExecuted, func(Event) { sibling++ })

	assert.NotPanics(t, func() {
		bus.Publish(Event{EventType: EventOrderExecuted})
	})
	assert.Equal(t, 1, sibling, "sibling listener must still run")
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	var calls int
	id := bus.Subscribe(EventOrderExecuted, func(Event) { calls++ })

	bus.Publish(Event{EventType: EventOrderExecuted})
	bus.Unsubscribe(id)
	bus.Publish(Event{EventType: EventOrderExecuted})

	assert.Equal(t, 1, calls)
}

func TestBus_SubscriptionOrderDelivery(t *testing.T) {
	bus := NewBus()
	var order []string
	bus.Subscribe(EventOrderExecuted, func(Event) { order = append(order, "first") })
	bus.Subscribe("", func(Event) { order = append(order, "wildcard") })
	bus.Subscribe(EventOrderExecuted, func(Event) { order = append(order, "third") })

	bus.Publish(Event{EventType: EventOrderExecuted})

	assert.Equal(t, []string{"first", "wildcard", "third"}, order)
}
