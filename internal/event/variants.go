package event

import "fmt"

// ChatMessageEvent is a direct message to one recipient.
type ChatMessageEvent struct {
	base
	recipient  UserID
	originName string
	message    string
}

// NewChatMessage builds a direct message from origin to recipient.
func NewChatMessage(origin UserID, originName string, recipient UserID, message string) ChatMessageEvent {
	return ChatMessageEvent{base: base{origin}, recipient: recipient, originName: originName, message: message}
}

func (e ChatMessageEvent) Kind() Kind         { return KindChatMessage }
func (e ChatMessageEvent) Recipient() UserID  { return e.recipient }
func (e ChatMessageEvent) OriginName() string { return e.originName }
func (e ChatMessageEvent) Message() string    { return e.message }

// IsFor reports whether u is the addressed recipient.
func (e ChatMessageEvent) IsFor(u UserID) bool { return e.recipient == u }

func (e ChatMessageEvent) Deliver(t EventTarget) error { return t.OnChatMessage(e) }

func (e ChatMessageEvent) DeliverClient(t ClientEventTarget) error { return t.OnChatMessage(e) }

// ChatAnonymousMessageEvent is a direct message whose sender is withheld
// from the recipient: targets always see SystemUser as the origin.
type ChatAnonymousMessageEvent struct {
	base
	recipient UserID
	message   string
}

// NewChatAnonymousMessage builds an anonymous direct message. origin is
// kept for server-side bookkeeping only.
func NewChatAnonymousMessage(origin, recipient UserID, message string) ChatAnonymousMessageEvent {
	return ChatAnonymousMessageEvent{base: base{origin}, recipient: recipient, message: message}
}

func (e ChatAnonymousMessageEvent) Kind() Kind          { return KindChatAnonymousMessage }
func (e ChatAnonymousMessageEvent) Recipient() UserID   { return e.recipient }
func (e ChatAnonymousMessageEvent) Message() string     { return e.message }
func (e ChatAnonymousMessageEvent) IsFor(u UserID) bool { return e.recipient == u }

func (e ChatAnonymousMessageEvent) masked() ChatAnonymousMessageEvent {
	e.origin = SystemUser
	return e
}

func (e ChatAnonymousMessageEvent) Deliver(t EventTarget) error {
	return t.OnChatAnonymousMessage(e.masked())
}

func (e ChatAnonymousMessageEvent) DeliverClient(t ClientEventTarget) error {
	return t.OnChatAnonymousMessage(e.masked())
}

// BroadcastMessageEvent goes to every live target.
type BroadcastMessageEvent struct {
	base
	originName string
	message    string
}

func NewBroadcastMessage(origin UserID, originName, message string) BroadcastMessageEvent {
	return BroadcastMessageEvent{base: base{origin}, originName: originName, message: message}
}

func (e BroadcastMessageEvent) Kind() Kind         { return KindBroadcastMessage }
func (e BroadcastMessageEvent) OriginName() string { return e.originName }
func (e BroadcastMessageEvent) Message() string    { return e.message }

func (e BroadcastMessageEvent) Deliver(t EventTarget) error { return t.OnBroadcastMessage(e) }

func (e BroadcastMessageEvent) DeliverClient(t ClientEventTarget) error {
	return t.OnBroadcastMessage(e)
}

// BroadcastAnonymousMessageEvent goes to every live target with the sender
// withheld.
type BroadcastAnonymousMessageEvent struct {
	base
	message string
}

func NewBroadcastAnonymousMessage(origin UserID, message string) BroadcastAnonymousMessageEvent {
	return BroadcastAnonymousMessageEvent{base: base{origin}, message: message}
}

func (e BroadcastAnonymousMessageEvent) Kind() Kind      { return KindBroadcastAnonymousMessage }
func (e BroadcastAnonymousMessageEvent) Message() string { return e.message }

func (e BroadcastAnonymousMessageEvent) masked() BroadcastAnonymousMessageEvent {
	e.origin = SystemUser
	return e
}

func (e BroadcastAnonymousMessageEvent) Deliver(t EventTarget) error {
	return t.OnBroadcastAnonymousMessage(e.masked())
}

func (e BroadcastAnonymousMessageEvent) DeliverClient(t ClientEventTarget) error {
	return t.OnBroadcastAnonymousMessage(e.masked())
}

// NewMessageEvent tells sessions a message was stored in a conference.
type NewMessageEvent struct {
	base
	conference ConferenceID
	message    MessageID
}

func NewNewMessage(origin UserID, conference ConferenceID, message MessageID) NewMessageEvent {
	return NewMessageEvent{base: base{origin}, conference: conference, message: message}
}

func (e NewMessageEvent) Kind() Kind                  { return KindNewMessage }
func (e NewMessageEvent) Conference() ConferenceID    { return e.conference }
func (e NewMessageEvent) MessageID() MessageID        { return e.message }
func (e NewMessageEvent) Deliver(t EventTarget) error { return t.OnNewMessage(e) }

// AttendanceType is the kind of presence change.
type AttendanceType int

const (
	Login AttendanceType = iota
	Logout
	FellAsleep
	Awoke
)

func (a AttendanceType) String() string {
	switch a {
	case Login:
		return "login"
	case Logout:
		return "logout"
	case FellAsleep:
		return "fell_asleep"
	case Awoke:
		return "awoke"
	default:
		return fmt.Sprintf("attendance(%d)", int(a))
	}
}

// UserAttendanceEvent reports a presence change of the acting user.
type UserAttendanceEvent struct {
	base
	name string
	typ  AttendanceType
}

func NewUserAttendance(origin UserID, name string, typ AttendanceType) UserAttendanceEvent {
	return UserAttendanceEvent{base: base{origin}, name: name, typ: typ}
}

func (e UserAttendanceEvent) Kind() Kind                  { return KindUserAttendance }
func (e UserAttendanceEvent) Name() string                { return e.name }
func (e UserAttendanceEvent) Type() AttendanceType        { return e.typ }
func (e UserAttendanceEvent) Deliver(t EventTarget) error { return t.OnUserAttendance(e) }

// ReloadUserProfileEvent asks the session of one user to refresh cached
// profile data. It is always system-originated.
type ReloadUserProfileEvent struct {
	base
	target UserID
}

func NewReloadUserProfile(target UserID) ReloadUserProfileEvent {
	return ReloadUserProfileEvent{base: base{SystemUser}, target: target}
}

func (e ReloadUserProfileEvent) Kind() Kind                  { return KindReloadUserProfile }
func (e ReloadUserProfileEvent) Target() UserID              { return e.target }
func (e ReloadUserProfileEvent) IsFor(u UserID) bool         { return e.target == u }
func (e ReloadUserProfileEvent) Deliver(t EventTarget) error { return t.OnReloadUserProfile(e) }

// MessageDeletedEvent reports a removed message. Conference is
// AnyConference when the deletion is not tied to one conference.
type MessageDeletedEvent struct {
	base
	conference ConferenceID
	message    MessageID
}

func NewMessageDeleted(origin UserID, conference ConferenceID, message MessageID) MessageDeletedEvent {
	return MessageDeletedEvent{base: base{origin}, conference: conference, message: message}
}

func (e MessageDeletedEvent) Kind() Kind                  { return KindMessageDeleted }
func (e MessageDeletedEvent) Conference() ConferenceID    { return e.conference }
func (e MessageDeletedEvent) MessageID() MessageID        { return e.message }
func (e MessageDeletedEvent) Deliver(t EventTarget) error { return t.OnMessageDeleted(e) }

var (
	_ ClientEvent = ChatMessageEvent{}
	_ ClientEvent = ChatAnonymousMessageEvent{}
	_ ClientEvent = BroadcastMessageEvent{}
	_ ClientEvent = BroadcastAnonymousMessageEvent{}
	_ Event       = NewMessageEvent{}
	_ Event       = UserAttendanceEvent{}
	_ Event       = ReloadUserProfileEvent{}
	_ Event       = MessageDeletedEvent{}
)
