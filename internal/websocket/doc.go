// Package websocket streams conversion progress to browser clients.
//
// A Hub owns the connected clients and fans messages out from a single
// goroutine. ProgressPublisher adapts the hub to the report service so every
// stage of a conversion becomes a "conversion:progress" message, and Handler
// upgrades /ws requests, optionally scoped to one request id.
package websocket
