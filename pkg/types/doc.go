/*
Package types defines the domain model shared by every otool package.

# Configuration

The declarative configuration is a set of collections loaded from the config
store:

  - Platform: os, version and architecture jobs run on
  - Task: a unit of work (build, tck, jtreg) and the variant dimensions it requires
  - TaskVariant: one variant dimension and the values it admits
  - JDKVersion: a JDK line and the product packages that belong to it
  - BuildProvider: a source of builds
  - Project: which platforms, tasks, variants and providers a product is
    built or tested on

A Snapshot indexes one consistent version of these collections. Job names are
only meaningful relative to the snapshot they were produced from, so decoding
and expansion always receive one explicitly.

# Identities

JobKey is the composite key of a job and JobIdentity tags it as a build or a
test job. BuildCoordinate is a legacy NVR/NVRA coordinate and Expectation a
record of the architectures a build is expected to produce.

# Errors

Errors carry one of the sentinel kinds in errors.go. IsClientError separates
bad input or configuration drift from a broken system.
*/
package types
