/*
Package log provides structured logging for otool on top of zerolog.

A single global Logger is configured once by Init from the process
configuration. Components derive child loggers carrying their own fields:

	logger := log.WithComponent("lifecycle")
	jobLogger := log.WithJob(logger, name)
	jobLogger.Info().Str("nvr", nvr).Msg("Removed coordinate from ledger")

Console output is the default; JSON output is meant for log shipping.

# Fields

  - component: the package that logged (matrix, lifecycle, manager, api, client)
  - project: project id during expansion
  - job: job name during ledger operations
  - request_id: the X-Request-ID of the HTTP request being served

Until Init runs the global Logger is the zero zerolog.Logger, which discards
everything, so tests need no setup.
*/
package log
