package event

// ClientEventTarget receives the events that only make sense for a
// directly connected client.
type ClientEventTarget interface {
	OnChatMessage(ChatMessageEvent) error
	OnChatAnonymousMessage(ChatAnonymousMessageEvent) error
	OnBroadcastMessage(BroadcastMessageEvent) error
	OnBroadcastAnonymousMessage(BroadcastAnonymousMessageEvent) error
}

// EventTarget is implemented by every subscriber, typically one per
// connected session. Target-scoped events (chat, profile reload) reach
// every target; the handler decides whether it is the addressee.
type EventTarget interface {
	ClientEventTarget
	OnNewMessage(NewMessageEvent) error
	OnUserAttendance(UserAttendanceEvent) error
	OnReloadUserProfile(ReloadUserProfileEvent) error
	OnMessageDeleted(MessageDeletedEvent) error
	// OnEvent is the fallback for events outside the built-in set.
	OnEvent(Event) error
}

// NopTarget ignores every event. Embed it to implement only some handlers.
type NopTarget struct{}

func (NopTarget) OnChatMessage(ChatMessageEvent) error                             { return nil }
func (NopTarget) OnChatAnonymousMessage(ChatAnonymousMessageEvent) error           { return nil }
func (NopTarget) OnBroadcastMessage(BroadcastMessageEvent) error                   { return nil }
func (NopTarget) OnBroadcastAnonymousMessage(BroadcastAnonymousMessageEvent) error { return nil }
func (NopTarget) OnNewMessage(NewMessageEvent) error                               { return nil }
func (NopTarget) OnUserAttendance(UserAttendanceEvent) error                       { return nil }
func (NopTarget) OnReloadUserProfile(ReloadUserProfileEvent) error                 { return nil }
func (NopTarget) OnMessageDeleted(MessageDeletedEvent) error                       { return nil }
func (NopTarget) OnEvent(Event) error                                              { return nil }

var _ EventTarget = NopTarget{}
