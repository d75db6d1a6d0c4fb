// Package engine runs one game of Stories.
//
// A Game owns the deck, the table and the global discard pile. Commands
// arrive as text, are parsed by the command registry into typed requests and
// dispatched to handlers that return a Result. A Game is not safe for
// concurrent use; callers serialize commands per game.
package engine
