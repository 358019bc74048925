// Package sse streams a broadcast to HTTP clients as Server-Sent Events.
//
// Every client gets its own broadcast.Handle cloned at the current head,
// so a slow client only ever lags itself. When a client falls further
// behind than the broadcast cache it receives a "lagged" event with the
// number of missed items before the next "message".
//
// # Usage
//
//	bc := broadcast.NewComponent(root)
//	srv := sse.NewServer[Tick](cfg.HTTP, bc, sse.WithHealth(registry))
//	registry.Register(bc)
//	registry.Register(srv)
package sse
