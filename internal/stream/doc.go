// Package stream implements the client side of the market sonification
// stream.
//
// The stream client:
//   - Owns one bidirectional WebSocket connection
//   - Parses inbound frames and delivers them in strict arrival order
//   - Reconnects after a fixed delay when the transport drops
//   - Accepts outbound control messages while the connection is open
//
// State machine: Disconnected → Connecting → Connected → (on close or
// error) Reconnecting → Connecting → ... The cycle only terminates on an
// explicit Close, which also cancels any pending reconnect timer.
package stream
