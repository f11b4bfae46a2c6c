package notifier

import (
	"fmt"

	"github.com/Wingseter/signal-smith-sub001/internal/audit"
	"github.com/Wingseter/signal-smith-sub001/internal/logger"
)

// Sender is what the observer needs from a notifier backend.
type Sender interface {
	SendText(text string) error
}

var _ Sender = (*Telegram)(nil)

// Attach subscribes the sender to the lifecycle events an operator cares
// about. Delivery runs off the publishing goroutine so a slow chat API never
// stalls an execution.
func Attach(bus *audit.Bus, sender Sender) {
	if bus == nil || sender == nil {
		return
	}
	for _, eventType := range []string{
		audit.EventOrderExecuted,
		audit.EventAutoExecuted,
		audit.EventOrderQueued,
		audit.EventCancelled,
	} {
		bus.Subscribe(eventType, func(evt audit.Event) {
			go deliver(sender, evt)
		})
	}
}

func deliver(sender Sender, evt audit.Event) {
	if err := sender.SendText(format(evt)); err != nil {
		logger.Warnf("notifier: delivering %s for %s failed: %v", evt.EventType, evt.Symbol, err)
	}
}

func format(evt audit.Event) string {
	switch evt.EventType {
	case audit.EventOrderExecuted:
		return fmt.Sprintf("✅ *Executed* %s %s (order %v)", evt.Action, evt.Symbol, evt.Details["order_no"])
	case audit.EventAutoExecuted:
		return fmt.Sprintf("🤖 *Auto-executed* %s %s (order %v)", evt.Action, evt.Symbol, evt.Details["order_no"])
	case audit.EventOrderQueued:
		return fmt.Sprintf("⏸ *Queued* %s %s: %v", evt.Action, evt.Symbol, evt.Details["reason"])
	case audit.EventCancelled:
		return fmt.Sprintf("🚫 *Cancelled* %s %s: insufficient funds", evt.Action, evt.Symbol)
	default:
		return fmt.Sprintf("%s %s %s", evt.EventType, evt.Action, evt.Symbol)
	}
}
