/*
Package health probes the collaborators otool depends on at run time: the
orchestrator job listing and the build and jobs roots on disk.

A Monitor runs every Checker on an interval and only flips a component to
unhealthy after Config.Retries consecutive failures, so one slow Jenkins
answer does not flap /health. Settled results go to a ReportFunc, normally
metrics.UpdateComponent.
*/
package health
