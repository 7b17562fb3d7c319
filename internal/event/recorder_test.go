package event

import (
	"errors"
	"sync"
)

// call is one handler invocation seen by a recordingTarget.
type call struct {
	method string
	ev     Event
}

// recordingTarget records every callback. fail makes every handler return
// an error; panicMsg makes them panic.
type recordingTarget struct {
	mu       sync.Mutex
	calls    []call
	fail     bool
	panicMsg string
	onCall   func()
}

var errHandler = errors.New("handler failed")

func (r *recordingTarget) record(method string, ev Event) error {
	r.mu.Lock()
	r.calls = append(r.calls, call{method: method, ev: ev})
	cb := r.onCall
	r.mu.Unlock()
	if cb != nil {
		cb()
	}
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.fail {
		return errHandler
	}
	return nil
}

func (r *recordingTarget) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recordingTarget) OnChatMessage(e ChatMessageEvent) error {
	return r.record("OnChatMessage", e)
}
func (r *recordingTarget) OnChatAnonymousMessage(e ChatAnonymousMessageEvent) error {
	return r.record("OnChatAnonymousMessage", e)
}
func (r *recordingTarget) OnBroadcastMessage(e BroadcastMessageEvent) error {
	return r.record("OnBroadcastMessage", e)
}
func (r *recordingTarget) OnBroadcastAnonymousMessage(e BroadcastAnonymousMessageEvent) error {
	return r.record("OnBroadcastAnonymousMessage", e)
}
func (r *recordingTarget) OnNewMessage(e NewMessageEvent) error {
	return r.record("OnNewMessage", e)
}
func (r *recordingTarget) OnUserAttendance(e UserAttendanceEvent) error {
	return r.record("OnUserAttendance", e)
}
func (r *recordingTarget) OnReloadUserProfile(e ReloadUserProfileEvent) error {
	return r.record("OnReloadUserProfile", e)
}
func (r *recordingTarget) OnMessageDeleted(e MessageDeletedEvent) error {
	return r.record("OnMessageDeleted", e)
}
func (r *recordingTarget) OnEvent(e Event) error { return r.record("OnEvent", e) }

// customEvent is an event outside the built-in set.
type customEvent struct{ base }

func (customEvent) Kind() Kind                    { return "custom" }
func (e customEvent) Deliver(t EventTarget) error { return t.OnEvent(e) }
