/*
Package storage persists the otool configuration in BoltDB.

Each configuration collection lives in its own bucket keyed by object id, with
JSON encoded values:

	<dataDir>/otool.db
	  platforms       Platform by id
	  tasks           Task by id
	  taskVariants    TaskVariant by id
	  jdkVersions     JDKVersion by id
	  buildProviders  BuildProvider by id
	  projects        Project by id

Writes validate the object first. Delimiter characters inside values that end
up in job names and duplicate platform triads are rejected with
types.ErrInvalidConfiguration, so every name the codec produces stays
decodable.

Snapshot reads all buckets inside one read transaction and therefore always
returns a single consistent configuration version, even while writers are
active. References between collections are not enforced on write: deleting a
platform that a project still names is allowed, and the drift surfaces as
types.ErrUnresolvedReference on the next expansion.

# Errors

Missing ids fail with types.ErrNotFound. BoltDB and decoding failures are
wrapped as types.ErrStorageFailure.
*/
package storage
