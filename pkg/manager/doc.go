/*
Package manager implements the otool use cases on top of the configuration
store, the matrix expander and the build lifecycle tracker.

Every call reads a fresh configuration snapshot, so concurrent callers never
see a half-applied import and the manager itself holds no mutable state.

# Use Cases

	Jobs        - list declared, orchestrator or orphan job names
	Redeploy    - list processed builds or drop one from selected ledgers
	Arches      - resolve, preview, write or survey arches expectations
	Getters     - jdk versions, products, projects, platforms, koji arches, paths

Listing the orchestrator and expanding the declared matrix are independent,
so Jobs runs them concurrently with an errgroup and fails fast when either
side fails.

# Usage

	m := manager.NewManager(manager.Config{
		Store:   store,
		Lister:  lister,
		Tracker: lifecycle.NewTracker(trackerCfg),
		DataDir: dataDir,
	})

	orphans, err := m.Jobs(ctx, manager.JobsQuery{Mode: manager.ModeOrphansOtool})
	if err != nil {
		return err
	}
*/
package manager
