/*
Package metrics defines the otool Prometheus collectors, the health registry
behind /health and /ready, and a small timer helper.

All collectors are registered with the default registry at init and served by
Handler. Families:

	otool_config_objects_total{collection}     stored configuration objects
	otool_expansion_duration_seconds{kind}     project and full matrix expansion
	otool_expansion_failures_total             projects that failed to expand
	otool_declared_jobs{project}               jobs declared per project
	otool_reconciliation_duration_seconds      declared vs orchestrator comparison
	otool_orphan_jobs{side}                    missing and redundant jobs
	otool_ledger_removals_total{kind}          coordinates dropped by redeploy
	otool_expectation_writes_total             arches records written
	otool_api_requests_total{path,status}      HTTP requests served
	otool_api_request_duration_seconds{path}   HTTP request latency

The Collector refreshes otool_config_objects_total from the store and reports
the storage component to the health registry.

# Usage

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ExpansionDuration, "project")
*/
package metrics
