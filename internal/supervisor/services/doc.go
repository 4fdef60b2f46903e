// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package services adapts blocking components to suture's Serve(ctx) pattern.

HTTPServerService wraps an *http.Server: it runs ListenAndServe in a
goroutine and calls Shutdown with a bounded context when the supervisor
cancels. The activity consumer needs no wrapper; activity.Consumer already
implements suture.Service.

Return values drive the supervisor:

	nil        stopped cleanly, not restarted
	error      crashed, restarted with backoff
	ctx.Err()  shutdown requested
*/
package services
