// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package supervisor runs the long-lived services of the server under a
suture v4 supervision tree.

	RootSupervisor ("otakuconnect")
	├── MessagingSupervisor ("messaging-layer")
	│   └── activity.Consumer
	└── APISupervisor ("api-layer")
	    └── services.HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are logged
through sutureslog, which adapts them to the slog bridge over zerolog
(logging.NewSlogLogger).

# Shutdown

Serve returns when its context is canceled. Each service gets
TreeConfig.ShutdownTimeout to stop; UnstoppedServiceReport names any that
did not.
*/
package supervisor
