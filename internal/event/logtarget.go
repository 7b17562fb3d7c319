package event

import "github.com/rs/zerolog"

// LogTarget is an audit subscriber that writes every event it receives to
// the logger at debug level.
type LogTarget struct {
	log zerolog.Logger
}

func NewLogTarget(log zerolog.Logger) *LogTarget {
	return &LogTarget{log: log.With().Str("component", "event_audit").Logger()}
}

func (l *LogTarget) line(ev Event) *zerolog.Event {
	return l.log.Debug().Str("event", string(ev.Kind())).Int64("origin", int64(ev.Origin()))
}

func (l *LogTarget) OnChatMessage(e ChatMessageEvent) error {
	l.line(e).Int64("recipient", int64(e.Recipient())).Msg("chat message")
	return nil
}

func (l *LogTarget) OnChatAnonymousMessage(e ChatAnonymousMessageEvent) error {
	l.line(e).Int64("recipient", int64(e.Recipient())).Msg("anonymous chat message")
	return nil
}

func (l *LogTarget) OnBroadcastMessage(e BroadcastMessageEvent) error {
	l.line(e).Str("message", e.Message()).Msg("broadcast")
	return nil
}

func (l *LogTarget) OnBroadcastAnonymousMessage(e BroadcastAnonymousMessageEvent) error {
	l.line(e).Str("message", e.Message()).Msg("anonymous broadcast")
	return nil
}

func (l *LogTarget) OnNewMessage(e NewMessageEvent) error {
	l.line(e).Int64("conference", int64(e.Conference())).Int64("message_id", int64(e.MessageID())).Msg("new message")
	return nil
}

func (l *LogTarget) OnUserAttendance(e UserAttendanceEvent) error {
	l.line(e).Str("name", e.Name()).Stringer("type", e.Type()).Msg("attendance")
	return nil
}

func (l *LogTarget) OnReloadUserProfile(e ReloadUserProfileEvent) error {
	l.line(e).Int64("target", int64(e.Target())).Msg("reload profile")
	return nil
}

func (l *LogTarget) OnMessageDeleted(e MessageDeletedEvent) error {
	l.line(e).Int64("conference", int64(e.Conference())).Int64("message_id", int64(e.MessageID())).Msg("message deleted")
	return nil
}

func (l *LogTarget) OnEvent(e Event) error {
	l.line(e).Msg("event")
	return nil
}

var _ EventTarget = (*LogTarget)(nil)
