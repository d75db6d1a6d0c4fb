// Package command parses textual game commands into typed requests.
//
// A Registry maps each command name to a Definition carrying its arity and
// parser. Parsing never evaluates text: every command produces one of the
// request structs declared in requests.go.
package command
