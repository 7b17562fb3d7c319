package event

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DeliveryError wraps a failure raised by one target while handling an
// event. It is logged and counted, never returned to the dispatch caller.
type DeliveryError struct {
	Kind   Kind
	Target TargetID
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to target %d: %v", e.Kind, e.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher fans events out to every registered EventTarget.
//
// Delivery is at most once per target per Dispatch call, in registration
// order, with no retry. A target that fails (error or panic) is logged and
// skipped; the rest still receive the event. Targets may register and
// unregister while a dispatch is in flight: a target removed before its
// turn is skipped silently.
type Dispatcher struct {
	targets fanout[EventTarget]
	log     zerolog.Logger
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{log: log.With().Str("component", "dispatcher").Logger()}
}

// Register adds t and returns the handle used to unregister it.
func (d *Dispatcher) Register(t EventTarget) TargetID {
	id := d.targets.add(t)
	targetsGauge.WithLabelValues("session").Inc()
	return id
}

// Unregister removes a target. It reports false if id was not registered.
func (d *Dispatcher) Unregister(id TargetID) bool {
	if !d.targets.remove(id) {
		return false
	}
	targetsGauge.WithLabelValues("session").Dec()
	return true
}

// Len returns the number of registered targets.
func (d *Dispatcher) Len() int { return d.targets.len() }

// Dispatch delivers ev to every target registered at call time and
// returns how many targets handled it without failing.
func (d *Dispatcher) Dispatch(ev Event) int {
	return deliverAll(&d.targets, d.log, ev.Kind(), func(t EventTarget) error { return ev.Deliver(t) })
}

// ClientDispatcher is the Dispatcher counterpart for ClientEventTargets,
// which only receive ClientEvents.
type ClientDispatcher struct {
	targets fanout[ClientEventTarget]
	log     zerolog.Logger
}

func NewClientDispatcher(log zerolog.Logger) *ClientDispatcher {
	return &ClientDispatcher{log: log.With().Str("component", "client_dispatcher").Logger()}
}

func (d *ClientDispatcher) Register(t ClientEventTarget) TargetID {
	id := d.targets.add(t)
	targetsGauge.WithLabelValues("client").Inc()
	return id
}

func (d *ClientDispatcher) Unregister(id TargetID) bool {
	if !d.targets.remove(id) {
		return false
	}
	targetsGauge.WithLabelValues("client").Dec()
	return true
}

func (d *ClientDispatcher) Len() int { return d.targets.len() }

func (d *ClientDispatcher) Dispatch(ev ClientEvent) int {
	return deliverAll(&d.targets, d.log, ev.Kind(), func(t ClientEventTarget) error { return ev.DeliverClient(t) })
}

func deliverAll[T any](f *fanout[T], log zerolog.Logger, kind Kind, deliver func(T) error) int {
	eventsDispatched.WithLabelValues(string(kind)).Inc()
	ok := 0
	for _, m := range f.snapshot() {
		if !f.present(m.id) {
			continue
		}
		if err := safeDeliver(m.t, deliver); err != nil {
			derr := &DeliveryError{Kind: kind, Target: m.id, Err: err}
			deliveryFailures.WithLabelValues(string(kind)).Inc()
			log.Warn().Err(derr).Str("event", string(kind)).Uint64("target", uint64(m.id)).Msg("event delivery failed")
			continue
		}
		deliveries.WithLabelValues(string(kind)).Inc()
		ok++
	}
	return ok
}

func safeDeliver[T any](t T, deliver func(T) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return deliver(t)
}
