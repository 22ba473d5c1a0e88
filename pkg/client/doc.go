// Package client provides the orchestrator side of reconciliation: listers
// that report which jobs currently exist, through the Jenkins JSON API, a
// static job file, or the orchestrator's jobs directory.
package client
