/*
Package reconciler compares declared job populations with the jobs the
orchestrator actually has.

All operations are pure set algebra over job names; the package never parses
a name. Results are always sorted lexicographically.

	actual   = {jobA, jobB, jobC}
	declared = {jobB, jobC, jobD}

	OrphansOnOrchestrator(actual, declared) = {jobA}   redundant
	OrphansOnDeclared(declared, actual)     = {jobD}   missing

# Filters

Filters are comma-separated lists of regular expressions with full-match
semantics. Exclude drops names matching any pattern. Include is, for
compatibility with existing clients, the same predicate: it also keeps only the
names matching none of the patterns. A pattern that does not compile fails the
whole request with types.ErrInvalidFilter; there are no partial results.
*/
package reconciler
