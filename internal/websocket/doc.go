// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package websocket pushes live updates to open dashboards.

A Hub owns the set of connected clients. Every client runs a read pump and
a write pump; the write pump pings the peer on pingPeriod and the read pump
drops the connection when no pong arrives within pongWait.

Message types:

  - occurrence_created: a new occurrence was logged (all clients)
  - location_mapped: a location received coordinates (all clients)
  - notification: "New occurrence was added by ..." for users who enabled
    notify_new_occurrence in their settings, except the author
  - ping / pong: application level keepalive initiated by the browser

Broadcasts never block. A client whose send buffer is full is dropped and
its connection closed, so one slow browser cannot stall the others.

The hub is a suture service: RunWithContext returns ctx.Err() after closing
every client, and can be started again by the supervisor.

	hub := websocket.NewHub(db)
	hub.Subscribe(bus)
	tree.Add(supervisor.MessagingLayer, services.NewWebSocketHubService(hub))
*/
package websocket
