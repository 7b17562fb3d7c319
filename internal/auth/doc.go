// Package auth implements the authentication gateway and its credential
// backends.
//
//   - backend.go: the Authenticator contract, Ticket, error helpers.
//   - gateway.go: Gateway module (listener, accept loop, lifecycle).
//   - protocol.go: the per-connection line exchange.
//   - worker.go: Spawner implementations (goroutine per connection, bounded).
//   - memory.go, sqlite.go: Authenticator modules.
//   - factories.go: implementation identifiers for the registry.
//
// Wire protocol, one exchange per connection:
//
//	C: <username>\n
//	C: <password>\n
//	S: OK:<ticket>\r\n   or   FAIL\r\n
//
// The server closes the connection after responding, or without a response
// on any internal error.
package auth
