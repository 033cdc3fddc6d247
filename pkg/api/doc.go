// Package api defines the splitledger.v1 RPC surface: request and response
// messages, procedure names, handler constructors and typed clients.
//
// Messages are plain Go structs carried as JSON over the Connect protocol.
// Money is always a decimal string with two places, e.g. "10.00".
package api
