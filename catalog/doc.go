// Package catalog discovers effect sources and publishes immutable
// snapshots of their descriptors keyed by effect id.
//
// A discovery pass never fails as a whole: sources that do not parse or
// validate are logged, recorded in [Snapshot.Failures] and skipped. The
// resulting snapshot replaces the previous one in a single atomic store,
// so readers on any goroutine observe either the old or the new snapshot.
//
//	c := catalog.New()
//	sources, err := catalog.FSSources(effects.FS, "*.wgsl")
//	if err != nil { ... }
//	snap := c.Discover(sources)
//	d, ok := snap.Get("snow")
//
// [Catalog.Watch] repeats discovery whenever a directory of sources changes.
package catalog
