// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package supervisor runs the long-lived parts of the server under a
thejerf/suture/v4 supervision tree.

Every component that blocks (HTTP server, event bus router, websocket hub,
session cleanup) is wrapped as a suture.Service in the services
subpackage and added to one of three layers:

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.Add(supervisor.DataLayer, services.NewCleanupService(cleaner))
	tree.Add(supervisor.MessagingLayer, services.NewEventBusService(bus))
	tree.Add(supervisor.MessagingLayer, services.NewWebSocketHubService(hub))
	tree.Add(supervisor.APILayer, services.NewHTTPServerService(server, 10*time.Second))
	err := <-tree.ServeBackground(ctx)

A service that returns an error is restarted with backoff; failures are
counted per layer, so a crashing hub never takes the HTTP server down.
Supervisor events go to the application logger through sutureslog.
*/
package supervisor
