// Package event carries state-change notifications (chat, broadcasts,
// presence, profile reloads, message deletions) to live session targets.
//
// Events are immutable values. Each variant knows which EventTarget
// callback it maps to and delivers itself through Deliver, so the
// Dispatcher never switches on concrete types. Adding a variant means
// adding a callback to EventTarget as well; every target implementation
// then fails to compile until it handles the new kind.
package event
