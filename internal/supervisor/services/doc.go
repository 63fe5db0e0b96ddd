// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package services adapts application components to suture.Service.

Each wrapper translates a component's lifecycle (ListenAndServe/Shutdown,
Run(ctx), RunWithContext(ctx)) to Serve(ctx) and names itself through
String for supervisor logs. Components are accepted as small interfaces so
this package imports none of them.

  - HTTPServerService: *http.Server with graceful shutdown
  - EventBusService: the watermill router behind events.Bus
  - RunnerService: websocket.Hub (NewWebSocketHubService) and auth.Cleaner
    (NewCleanupService)
*/
package services
