/*
Package api serves the otool query surface over HTTP and a gRPC health
service next to it.

# Routes

	GET    /get/jobs?mode=...            job listings and orphans
	GET    /get/{jdkVersion,jdkVersions,products,projects,platforms,kojiArches,path,job,nvr,help}
	GET    /misc/re/build, /misc/re/test redeploy preview or removal (do=true)
	GET    /misc/re/archesExpected       arches expectations
	GET    /config/{collection}[/{id}]   configuration reads
	PUT    /config/{collection}/{id}     configuration upsert
	DELETE /config/{collection}/{id}     configuration delete
	GET    /health, /ready, /metrics

Responses are JSON except /get/help. Errors carry an ErrorResponse body with
status 400 for client mistakes (malformed identities, unknown references,
bad filters, invalid configuration) and 500 for storage, filesystem and
orchestrator failures.

Every request gets an X-Request-ID (taken from the request when present) that
is echoed back and attached to the access log line.
*/
package api
